// system.go — обработчик GET /info (информация о сервисе).
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/flyshare/internal/api/errors"
	"github.com/bigkaa/flyshare/internal/api/generated"
	"github.com/bigkaa/flyshare/internal/config"
	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/service"
)

// FileLister — источник списка файлов.
type FileLister interface {
	List() ([]model.FileRecord, error)
}

// RetentionController — управление планировщиком удаления.
// Реализуется *service.RetentionScheduler.
type RetentionController interface {
	Status() service.RetentionStatus
	SetTTL(ttl time.Duration) error
	ForceStart()
	ForceStop()
	Sweep() int
}

// ClientCounter — количество подключённых real-time клиентов.
type ClientCounter interface {
	ClientCount() int
}

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	uploadDir string
	files     FileLister
	retention RetentionController
	clients   ClientCounter
	logger    *slog.Logger
}

// NewSystemHandler создаёт обработчик системных endpoints.
func NewSystemHandler(
	uploadDir string,
	files FileLister,
	retention RetentionController,
	clients ClientCounter,
	logger *slog.Logger,
) *SystemHandler {
	return &SystemHandler{
		uploadDir: uploadDir,
		files:     files,
		retention: retention,
		clients:   clients,
		logger:    logger.With(slog.String("component", "system_handler")),
	}
}

// diskInfo — ёмкость файловой системы директории загрузок.
type diskInfo struct {
	TotalBytes     int64 `json:"totalBytes"`
	UsedBytes      int64 `json:"usedBytes"`
	AvailableBytes int64 `json:"availableBytes"`
}

// storageInfo — тело ответа GET /info.
type storageInfo struct {
	Service         string                    `json:"service"`
	Version         string                    `json:"version"`
	Files           int                       `json:"files"`
	TotalBytes      int64                     `json:"totalBytes"`
	Disk            *diskInfo                 `json:"disk,omitempty"`
	Retention       generated.RetentionStatus `json:"retention"`
	RealtimeClients int                       `json:"realtimeClients"`
}

// GetStorageInfo обрабатывает GET /info.
func (h *SystemHandler) GetStorageInfo(w http.ResponseWriter, _ *http.Request) {
	files, err := h.files.List()
	if err != nil {
		errors.InternalError(w, err.Error())
		return
	}

	var totalBytes int64
	for _, f := range files {
		totalBytes += f.Size
	}

	resp := storageInfo{
		Service:    serviceName,
		Version:    config.Version,
		Files:      len(files),
		TotalBytes: totalBytes,
		Retention:  toRetentionStatus(h.retention.Status()),
	}
	if h.clients != nil {
		resp.RealtimeClients = h.clients.ClientCount()
	}

	// Ошибка statfs не делает ответ невалидным: блок disk просто опускается
	if resp.Disk, err = statDisk(h.uploadDir); err != nil {
		h.logger.Warn("Не удалось получить ёмкость диска", slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, resp)
}
