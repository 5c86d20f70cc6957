// Пакет service — бизнес-логика flyshare.
// files.go — FileService: координатор жизненного цикла файлов.
//
// FileService согласует три представления «какие файлы существуют»:
// директорию загрузок (Storage), хранилище метаданных (metastore.Store)
// и поток событий для real-time подписчиков (EventBus).
//
// Уведомления хранилища обрабатываются одной горутиной строго
// последовательно в порядке поступления. HTTP-загрузки выполняются
// параллельно и упорядочиваются с обработкой уведомлений через
// мьютекс на имя файла.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/lifecycle"
	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
	"github.com/bigkaa/flyshare/internal/storage/metastore"
)

// sniffLen — сколько байт начала файла читается для определения MIME-типа.
const sniffLen = 3072

// Ошибки FileService.
var (
	// ErrNoFile — в запросе нет файла
	ErrNoFile = errors.New("No file uploaded")
	// ErrNotFound — файл не найден
	ErrNotFound = errors.New("File not found")
)

// Prometheus метрики FileService
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flyshare_uploads_total",
		Help: "Общее количество загрузок по результату",
	}, []string{"result"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_upload_bytes_total",
		Help: "Общий объём загруженных данных в байтах",
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flyshare_storage_notifications_total",
		Help: "Общее количество обработанных уведомлений хранилища",
	}, []string{"kind"})

	deleteOnDownloadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_delete_on_download_total",
		Help: "Общее количество файлов, удалённых после скачивания",
	})
)

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Reader — поток данных файла (nil — файл не передан)
	Reader io.Reader
	// OriginalName — исходное имя файла
	OriginalName string
	// ContentType — MIME-тип, заявленный клиентом
	ContentType string
	// DeleteOnDownload — удалить файл после первого скачивания
	DeleteOnDownload bool
}

// UploadError — ошибка загрузки с HTTP-кодом.
type UploadError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// MetadataPatch — изменяемые поля записи. nil — поле не меняется.
type MetadataPatch struct {
	DisplayName      *string
	DeleteOnDownload *bool
}

// FileService — координатор жизненного цикла файлов.
type FileService struct {
	storage Storage
	meta    metastore.Store
	bus     *EventBus
	tracker *lifecycle.Tracker
	locks   *keyedMutex
	baseURL string
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFileService создаёт координатор. baseURL — публичный адрес сервиса,
// из которого строятся адреса скачивания.
func NewFileService(storage Storage, meta metastore.Store, baseURL string, logger *slog.Logger) *FileService {
	return &FileService{
		storage: storage,
		meta:    meta,
		bus:     NewEventBus(logger),
		tracker: lifecycle.NewTracker(),
		locks:   newKeyedMutex(),
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "file_service")),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Start запускает обработку уведомлений хранилища.
func (s *FileService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("FileService уже запущен")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	go s.loop(loopCtx)

	s.logger.Info("Обработка уведомлений хранилища запущена")
	return nil
}

// Stop останавливает обработку уведомлений и дожидается её завершения.
func (s *FileService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()

	<-s.done
	s.logger.Info("Обработка уведомлений хранилища остановлена")
}

// Subscribe подписывает на события FileService.
func (s *FileService) Subscribe() *Subscription {
	return s.bus.Subscribe()
}

// Upload сохраняет файл и его метаданные.
//
// Поток событий: processingStarted, затем ровно одно из
// processingCompleted (+ filesChanged) или processingError.
//
// MIME-тип: заявленный клиентом, если он не пуст и не
// application/octet-stream; иначе определяется по содержимому.
func (s *FileService) Upload(ctx context.Context, p UploadParams) (*model.FileRecord, error) {
	s.bus.Publish(Event{Type: EventProcessingStarted, Filename: p.OriginalName})

	if p.Reader == nil {
		return nil, s.failUpload(p.OriginalName, &UploadError{
			StatusCode: http.StatusBadRequest,
			Message:    ErrNoFile.Error(),
			Err:        ErrNoFile,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, s.failUpload(p.OriginalName, &UploadError{
			StatusCode: http.StatusBadRequest,
			Message:    "Загрузка отменена",
			Err:        err,
		})
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(p.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, s.failUpload(p.OriginalName, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Ошибка чтения данных файла",
			Err:        err,
		})
	}
	head = head[:n]

	mimeType := p.ContentType
	if mimeType == "" || mimeType == model.DefaultMimeType {
		mimeType = mimetype.Detect(head).String()
	}

	saved, err := s.storage.Save(p.OriginalName, io.MultiReader(bytes.NewReader(head), p.Reader))
	if err != nil {
		return nil, s.failUpload(p.OriginalName, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Ошибка сохранения файла на диск",
			Err:        err,
		})
	}

	rec := model.FileRecord{
		Filename:         saved.Filename,
		DisplayName:      p.OriginalName,
		Size:             saved.Size,
		MimeType:         mimeType,
		CreatedAt:        s.now().UTC(),
		DeleteOnDownload: p.DeleteOnDownload,
	}
	rec.ApplyDefaults()

	if err := s.commitUpload(rec); err != nil {
		return nil, s.failUpload(p.OriginalName, &UploadError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Ошибка сохранения метаданных",
			Err:        err,
		})
	}

	out := rec.WithURL(s.baseURL)
	uploadsTotal.WithLabelValues("success").Inc()
	uploadBytesTotal.Add(float64(rec.Size))

	s.logger.Info("Файл загружен",
		slog.String("filename", rec.Filename),
		slog.String("display_name", rec.DisplayName),
		slog.Int64("size", rec.Size),
		slog.String("mimetype", rec.MimeType),
		slog.Bool("delete_on_download", rec.DeleteOnDownload),
	)

	s.bus.Publish(Event{Type: EventProcessingCompleted, Filename: p.OriginalName, File: &out})
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: rec.Filename})
	return &out, nil
}

// commitUpload записывает метаданные сохранённого файла.
// При ошибке файл удаляется, чтобы не оставить файл без записи.
func (s *FileService) commitUpload(rec model.FileRecord) error {
	unlock := s.locks.Lock(rec.Filename)
	defer unlock()

	if s.tracker.CanTransitionTo(rec.Filename, lifecycle.Pending) {
		_ = s.tracker.TransitionTo(rec.Filename, lifecycle.Pending)
	}

	if err := s.meta.Put(rec.Filename, rec); err != nil {
		if delErr := s.storage.Delete(rec.Filename); delErr != nil {
			s.logger.Error("Ошибка удаления файла после сбоя записи метаданных",
				slog.String("filename", rec.Filename),
				slog.String("error", delErr.Error()),
			)
		}
		if s.tracker.State(rec.Filename) == lifecycle.Pending {
			_ = s.tracker.TransitionTo(rec.Filename, lifecycle.Absent)
		}
		return err
	}

	s.markPresent(rec.Filename)
	return nil
}

func (s *FileService) failUpload(originalName string, uerr *UploadError) error {
	uploadsTotal.WithLabelValues("error").Inc()
	s.logger.Error("Ошибка загрузки файла",
		slog.String("filename", originalName),
		slog.String("error", uerr.Error()),
	)
	s.bus.Publish(Event{Type: EventProcessingError, Filename: originalName, Err: uerr.Message})
	return uerr
}

// List возвращает все записи (новые первые) с адресами скачивания.
func (s *FileService) List() ([]model.FileRecord, error) {
	recs, err := s.meta.List()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка файлов: %w", err)
	}
	for i := range recs {
		recs[i] = recs[i].WithURL(s.baseURL)
	}
	return recs, nil
}

// Metadata возвращает запись файла. ErrNotFound — записи нет.
func (s *FileService) Metadata(filename string) (*model.FileRecord, error) {
	rec, err := s.meta.Get(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	out := rec.WithURL(s.baseURL)
	return &out, nil
}

// Path возвращает путь к файлу на диске. ErrNotFound — файла нет.
func (s *FileService) Path(filename string) (string, error) {
	path, err := s.storage.Path(filename)
	if errors.Is(err, filestore.ErrNotFound) || errors.Is(err, filestore.ErrInvalidName) {
		return "", ErrNotFound
	}
	return path, err
}

// Delete удаляет файл: сначала метаданные (список сразу перестаёт
// показывать файл), затем сам файл. Повторное удаление — no-op.
func (s *FileService) Delete(filename string) error {
	unlock := s.locks.Lock(filename)
	defer unlock()

	if !s.tracker.CanTransitionTo(filename, lifecycle.Deleting) {
		// Файл уже удаляется
		return nil
	}
	_ = s.tracker.TransitionTo(filename, lifecycle.Deleting)

	return s.deleteLocked(filename)
}

// deleteLocked удаляет файл в состоянии Deleting. Вызывается под мьютексом имени.
func (s *FileService) deleteLocked(filename string) error {
	defer s.tracker.Forget(filename)

	if err := s.meta.Delete(filename); err != nil {
		return fmt.Errorf("ошибка удаления метаданных %s: %w", filename, err)
	}
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: filename})

	if err := s.storage.Delete(filename); err != nil && !errors.Is(err, filestore.ErrInvalidName) {
		return fmt.Errorf("ошибка удаления файла %s: %w", filename, err)
	}

	s.logger.Info("Файл удалён", slog.String("filename", filename))
	return nil
}

// ConsumeDeleteOnDownload удаляет файл с флагом deleteOnDownload.
// Вызывается после полной передачи файла клиенту. Файл удаляется
// не более одного раза: повторный вызов — no-op.
func (s *FileService) ConsumeDeleteOnDownload(filename string) error {
	unlock := s.locks.Lock(filename)
	defer unlock()

	rec, err := s.meta.Get(filename)
	if err != nil {
		return fmt.Errorf("ошибка чтения метаданных %s: %w", filename, err)
	}
	if rec == nil || !rec.DeleteOnDownload {
		return nil
	}

	if err := s.tracker.TransitionTo(filename, lifecycle.Deleting); err != nil {
		s.logger.Debug("Удаление после скачивания уже выполняется",
			slog.String("filename", filename),
		)
		return nil
	}

	if err := s.deleteLocked(filename); err != nil {
		return err
	}
	deleteOnDownloadTotal.Inc()
	return nil
}

// UpdateMetadata изменяет displayName и/или deleteOnDownload.
func (s *FileService) UpdateMetadata(filename string, patch MetadataPatch) (*model.FileRecord, error) {
	unlock := s.locks.Lock(filename)
	defer unlock()

	rec, err := s.meta.Get(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения метаданных %s: %w", filename, err)
	}
	if rec == nil || s.tracker.State(filename) == lifecycle.Deleting {
		return nil, ErrNotFound
	}

	if patch.DisplayName != nil {
		rec.DisplayName = *patch.DisplayName
	}
	if patch.DeleteOnDownload != nil {
		rec.DeleteOnDownload = *patch.DeleteOnDownload
	}
	rec.ApplyDefaults()

	if err := s.meta.Put(filename, *rec); err != nil {
		return nil, fmt.Errorf("ошибка сохранения метаданных %s: %w", filename, err)
	}

	s.logger.Info("Метаданные обновлены",
		slog.String("filename", filename),
		slog.String("display_name", rec.DisplayName),
		slog.Bool("delete_on_download", rec.DeleteOnDownload),
	)
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: filename})

	out := rec.WithURL(s.baseURL)
	return &out, nil
}

// loop последовательно обрабатывает уведомления хранилища.
func (s *FileService) loop(ctx context.Context) {
	defer close(s.done)

	notifications := s.storage.Notifications()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-notifications:
			if !ok {
				return
			}
			s.handleNotification(ev)
		}
	}
}

func (s *FileService) handleNotification(ev model.StorageEvent) {
	notificationsTotal.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case model.StorageAdded:
		s.handleAdded(ev.Filename)
	case model.StorageDeleted:
		s.handleDeleted(ev.Filename)
	case model.StorageUpdated:
		s.handleUpdated(ev.Filename)
	default:
		s.logger.Warn("Неизвестное уведомление хранилища",
			slog.String("kind", string(ev.Kind)),
			slog.String("filename", ev.Filename),
		)
	}
}

// handleAdded создаёт запись для нового файла или подтверждает существующую.
func (s *FileService) handleAdded(filename string) {
	unlock := s.locks.Lock(filename)
	defer unlock()

	if s.tracker.State(filename) == lifecycle.Deleting {
		return
	}

	rec, err := s.meta.Get(filename)
	if err != nil {
		s.reconcileError(filename, "Failed to get metadata", err)
		return
	}

	if rec == nil {
		info, err := s.storage.Stat(filename)
		if errors.Is(err, filestore.ErrNotFound) {
			// Файл исчез до обработки: придёт уведомление deleted
			return
		}
		if err != nil {
			s.reconcileError(filename, "Failed to stat file", err)
			return
		}
		synthesized := s.synthesize(info)
		rec = &synthesized

		s.logger.Info("Обнаружен новый файл",
			slog.String("filename", filename),
			slog.Int64("size", rec.Size),
		)
	}

	if err := s.meta.Put(filename, *rec); err != nil {
		s.reconcileError(filename, "Failed to save metadata", err)
		return
	}
	s.markPresent(filename)
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: filename})
}

// handleDeleted удаляет запись исчезнувшего файла.
func (s *FileService) handleDeleted(filename string) {
	unlock := s.locks.Lock(filename)
	defer unlock()

	if err := s.meta.Delete(filename); err != nil {
		s.reconcileError(filename, "Failed to delete metadata", err)
		return
	}
	s.tracker.Forget(filename)
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: filename})
}

// handleUpdated обновляет размер в записи изменённого файла.
// deleteOnDownload сохраняется.
func (s *FileService) handleUpdated(filename string) {
	unlock := s.locks.Lock(filename)
	defer unlock()

	rec, err := s.meta.Get(filename)
	if err != nil {
		s.reconcileError(filename, "Failed to get metadata", err)
		return
	}
	if rec == nil {
		s.reconcileError(filename, "Failed to get metadata", ErrNotFound)
		return
	}

	if info, err := s.storage.Stat(filename); err == nil {
		rec.Size = info.Size
	}

	if err := s.meta.Put(filename, *rec); err != nil {
		s.reconcileError(filename, "Failed to save metadata", err)
		return
	}
	s.markPresent(filename)
	s.bus.Publish(Event{Type: EventFilesChanged, Filename: filename})
}

// synthesize строит запись для файла, появившегося без загрузки через API.
func (s *FileService) synthesize(info *filestore.FileInfo) model.FileRecord {
	rec := model.FileRecord{
		Filename:  info.Name,
		Size:      info.Size,
		CreatedAt: info.BirthTime.UTC(),
	}
	rec.ApplyDefaults()
	return rec
}

// markPresent переводит файл в Present, если он ещё не там.
func (s *FileService) markPresent(filename string) {
	if s.tracker.State(filename) == lifecycle.Present {
		return
	}
	if err := s.tracker.TransitionTo(filename, lifecycle.Present); err != nil {
		s.logger.Warn("Недопустимый переход состояния файла",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
	}
}

func (s *FileService) reconcileError(filename, message string, err error) {
	s.logger.Error(message,
		slog.String("filename", filename),
		slog.String("error", err.Error()),
	)
	s.bus.Publish(Event{Type: EventProcessingError, Filename: filename, Err: message})
}
