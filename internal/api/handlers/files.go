// files.go — HTTP handlers файловых операций.
// Upload, Download, List, Get metadata, Update metadata, Delete.
package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/flyshare/internal/api/errors"
	"github.com/bigkaa/flyshare/internal/api/generated"
	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/service"
)

// multipartMemory — часть multipart-формы, которая держится в памяти.
// Остальное net/http сбрасывает во временные файлы.
const multipartMemory = 32 << 20

// FileManager — операции координатора, нужные файловым handlers.
// Реализуется *service.FileService.
type FileManager interface {
	Upload(ctx context.Context, p service.UploadParams) (*model.FileRecord, error)
	List() ([]model.FileRecord, error)
	Metadata(filename string) (*model.FileRecord, error)
	Path(filename string) (string, error)
	Delete(filename string) error
	ConsumeDeleteOnDownload(filename string) error
	UpdateMetadata(filename string, patch service.MetadataPatch) (*model.FileRecord, error)
}

// FilesHandler — обработчик файловых endpoints.
type FilesHandler struct {
	files         FileManager
	maxUploadSize int64
	logger        *slog.Logger
}

// NewFilesHandler создаёт обработчик файловых endpoints.
// maxUploadSize — ограничение тела запроса загрузки в байтах.
func NewFilesHandler(files FileManager, maxUploadSize int64, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "files_handler")),
	}
}

// uploadResponse — тело успешного ответа загрузки.
type uploadResponse struct {
	Message string           `json:"message"`
	File    model.FileRecord `json:"file"`
}

// UploadFile обрабатывает POST /upload.
// Multipart form: file (обязательно), deleteOnDownload ("true"/"false", опционально).
func (h *FilesHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			errors.PayloadTooLarge(w, fmt.Sprintf("Максимальный размер загрузки: %d байт", maxErr.Limit))
			return
		}
		errors.ValidationError(w, "Invalid multipart form")
		return
	}

	params := service.UploadParams{
		DeleteOnDownload: parseFlag(r.FormValue("deleteOnDownload")),
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		params.Reader = file
		params.OriginalName = header.Filename
		params.ContentType = header.Header.Get("Content-Type")
	}

	rec, err := h.files.Upload(r.Context(), params)
	if err != nil {
		var uploadErr *service.UploadError
		switch {
		case stderrors.As(err, &uploadErr) && uploadErr.StatusCode < http.StatusInternalServerError:
			errors.ValidationError(w, uploadErr.Message)
		case stderrors.As(err, &uploadErr):
			errors.ServerError(w, uploadErr.Message)
		default:
			errors.ServerError(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		Message: "File uploaded successfully",
		File:    *rec,
	})
}

// DownloadFile обрабатывает GET /download/{filename}.
// После полной передачи файла выполняется удаление, если у записи
// установлен deleteOnDownload. Оборванная передача файл не удаляет.
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, _ *http.Request, filename generated.Filename) {
	path, err := h.files.Path(filename)
	if err != nil {
		if stderrors.Is(err, service.ErrNotFound) {
			errors.NotFound(w)
			return
		}
		errors.InternalError(w, err.Error())
		return
	}

	// Файл без записи (ещё не обработан наблюдателем) отдаётся
	// со значениями по умолчанию
	rec, err := h.files.Metadata(filename)
	if err != nil && !stderrors.Is(err, service.ErrNotFound) {
		errors.InternalError(w, err.Error())
		return
	}
	if rec == nil {
		rec = &model.FileRecord{Filename: filename}
		rec.ApplyDefaults()
	}

	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			errors.NotFound(w)
			return
		}
		errors.InternalError(w, "Ошибка чтения файла")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		errors.InternalError(w, "Ошибка чтения файла")
		return
	}

	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition(rec.DisplayName))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil || n != stat.Size() {
		h.logger.Warn("Передача файла прервана",
			slog.String("filename", filename),
			slog.Int64("sent", n),
			slog.Int64("size", stat.Size()),
		)
		return
	}
	if err := http.NewResponseController(w).Flush(); err != nil {
		h.logger.Warn("Ошибка отправки ответа",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := h.files.ConsumeDeleteOnDownload(filename); err != nil {
		h.logger.Error("Ошибка удаления файла после скачивания",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
	}
}

// ListFiles обрабатывает GET /files. Новые файлы первые.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, _ *http.Request) {
	files, err := h.files.List()
	if err != nil {
		errors.InternalError(w, err.Error())
		return
	}
	if files == nil {
		files = []model.FileRecord{}
	}
	writeJSON(w, http.StatusOK, files)
}

// GetFileMetadata обрабатывает GET /files/{filename}.
func (h *FilesHandler) GetFileMetadata(w http.ResponseWriter, _ *http.Request, filename generated.Filename) {
	rec, err := h.files.Metadata(filename)
	if err != nil {
		if stderrors.Is(err, service.ErrNotFound) {
			errors.NotFound(w)
			return
		}
		errors.InternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateFileMetadata обрабатывает PATCH /files/{filename}.
// Обновляет displayName и/или deleteOnDownload.
func (h *FilesHandler) UpdateFileMetadata(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	var req generated.UpdateFileMetadataJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.DisplayName == nil && req.DeleteOnDownload == nil {
		errors.ValidationError(w, "Необходимо указать хотя бы одно поле (displayName или deleteOnDownload)")
		return
	}
	if req.DisplayName != nil && *req.DisplayName == "" {
		errors.ValidationError(w, "displayName не может быть пустым")
		return
	}

	rec, err := h.files.UpdateMetadata(filename, service.MetadataPatch{
		DisplayName:      req.DisplayName,
		DeleteOnDownload: req.DeleteOnDownload,
	})
	if err != nil {
		if stderrors.Is(err, service.ErrNotFound) {
			errors.NotFound(w)
			return
		}
		errors.InternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteFile обрабатывает DELETE /files/{filename}.
// Идемпотентно: неизвестное имя тоже даёт 204.
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, _ *http.Request, filename generated.Filename) {
	if err := h.files.Delete(filename); err != nil {
		h.logger.Error("Ошибка удаления файла",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		errors.InternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// quoteEscaper экранирует содержимое quoted-string.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// contentDisposition формирует заголовок вложения: ASCII-имя всегда
// в кавычках, не-ASCII и управляющие символы кодируются по RFC 2231.
func contentDisposition(displayName string) string {
	for _, r := range displayName {
		if r >= utf8.RuneSelf || r < ' ' || r == 0x7f {
			if v := mime.FormatMediaType("attachment", map[string]string{"filename": displayName}); v != "" {
				return v
			}
			return "attachment"
		}
	}
	return `attachment; filename="` + quoteEscaper.Replace(displayName) + `"`
}

// parseFlag разбирает булево поле формы. Всё, кроме "true", — false.
func parseFlag(val string) bool {
	return val == "true"
}

// writeJSON вспомогательная функция для записи JSON-ответа.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
