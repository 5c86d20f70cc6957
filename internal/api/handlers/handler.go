// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/flyshare/internal/api/generated"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	files       *FilesHandler
	system      *SystemHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
	// realtime — WebSocket hub, metrics — экспорт Prometheus.
	// nil — endpoint отвечает 404.
	realtime http.Handler
	metrics  http.Handler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	files *FilesHandler,
	system *SystemHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
	realtime http.Handler,
	metrics http.Handler,
) *APIHandler {
	return &APIHandler{
		files:       files,
		system:      system,
		maintenance: maintenance,
		health:      health,
		realtime:    realtime,
		metrics:     metrics,
	}
}

// --- File Operations ---

func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	h.files.UploadFile(w, r)
}

func (h *APIHandler) DownloadFile(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.DownloadFile(w, r, filename)
}

func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	h.files.ListFiles(w, r)
}

func (h *APIHandler) GetFileMetadata(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.GetFileMetadata(w, r, filename)
}

func (h *APIHandler) UpdateFileMetadata(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.UpdateFileMetadata(w, r, filename)
}

func (h *APIHandler) DeleteFile(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.DeleteFile(w, r, filename)
}

// --- Realtime ---

func (h *APIHandler) Realtime(w http.ResponseWriter, r *http.Request) {
	serveOptional(h.realtime, w, r)
}

// --- Maintenance ---

func (h *APIHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	h.maintenance.Reconcile(w, r)
}

func (h *APIHandler) GetRetention(w http.ResponseWriter, r *http.Request) {
	h.maintenance.GetRetention(w, r)
}

func (h *APIHandler) UpdateRetention(w http.ResponseWriter, r *http.Request) {
	h.maintenance.UpdateRetention(w, r)
}

func (h *APIHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	h.maintenance.Sweep(w, r)
}

// --- System ---

func (h *APIHandler) GetStorageInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetStorageInfo(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	serveOptional(h.metrics, w, r)
}

func serveOptional(handler http.Handler, w http.ResponseWriter, r *http.Request) {
	if handler == nil {
		http.NotFound(w, r)
		return
	}
	handler.ServeHTTP(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)
