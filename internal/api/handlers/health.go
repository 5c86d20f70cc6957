// health.go — обработчики health endpoints (liveness/readiness probes).
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bigkaa/flyshare/internal/config"
	"github.com/bigkaa/flyshare/internal/domain/model"
)

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// serviceName — имя сервиса в ответах health и info.
const serviceName = "flyshare"

// healthProbeKey — ключ, который запрашивается у хранилища метаданных
// при проверке готовности. Скрытые имена никогда не хранятся.
const healthProbeKey = ".health_check"

// MetadataChecker — проверка доступности хранилища метаданных.
// Реализуется metastore.Store.
type MetadataChecker interface {
	Get(filename string) (*model.FileRecord, error)
}

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	// uploadDir — директория загрузок (проверка записи)
	uploadDir string
	meta      MetadataChecker
}

// NewHealthHandler создаёт обработчик health endpoints.
// meta может быть nil — проверка метаданных не выполняется.
func NewHealthHandler(uploadDir string, meta MetadataChecker) *HealthHandler {
	return &HealthHandler{
		version:   config.Version,
		uploadDir: uploadDir,
		meta:      meta,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
	})
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет: директория загрузок доступна на запись, хранилище метаданных отвечает.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	fsCheck := h.checkFilesystem()
	metaCheck := h.checkMetadata()
	for _, check := range []map[string]any{fsCheck, metaCheck} {
		if check["status"] != "ok" {
			overallStatus = statusFail
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   serviceName,
		"checks": map[string]any{
			"filesystem": fsCheck,
			"metadata":   metaCheck,
		},
	})
}

// checkFilesystem проверяет доступность директории загрузок на запись.
// Скрытый проверочный файл игнорируется наблюдателем.
func (h *HealthHandler) checkFilesystem() map[string]any {
	if h.uploadDir == "" {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	testFile := filepath.Join(h.uploadDir, healthProbeKey)
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Директория загрузок недоступна для записи: " + err.Error(),
		}
	}
	_ = os.Remove(testFile)

	return map[string]any{
		"status": "ok",
	}
}

// checkMetadata проверяет, что хранилище метаданных отвечает.
func (h *HealthHandler) checkMetadata() map[string]any {
	if h.meta == nil {
		return map[string]any{
			"status":  "ok",
			"message": "Проверка не настроена",
		}
	}

	if _, err := h.meta.Get(healthProbeKey); err != nil {
		return map[string]any{
			"status":  statusFail,
			"message": "Хранилище метаданных недоступно: " + err.Error(),
		}
	}

	return map[string]any{
		"status": "ok",
	}
}
