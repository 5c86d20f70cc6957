// maintenance.go — endpoints обслуживания: сверка и управление
// планировщиком удаления.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/flyshare/internal/api/errors"
	"github.com/bigkaa/flyshare/internal/api/generated"
	"github.com/bigkaa/flyshare/internal/service"
)

// ReconcileRunner — интерфейс для запуска reconciliation.
// Позволяет тестировать handler без полного ReconcileService.
type ReconcileRunner interface {
	// RunOnce выполняет один цикл reconciliation.
	// Возвращает результат и флаг "уже выполняется".
	RunOnce(ctx context.Context) (*service.ReconcileReport, bool, error)
}

// MaintenanceHandler — обработчик endpoints обслуживания.
type MaintenanceHandler struct {
	reconciler ReconcileRunner
	retention  RetentionController
}

// NewMaintenanceHandler создаёт обработчик maintenance endpoints.
func NewMaintenanceHandler(reconciler ReconcileRunner, retention RetentionController) *MaintenanceHandler {
	return &MaintenanceHandler{
		reconciler: reconciler,
		retention:  retention,
	}
}

// Reconcile обрабатывает POST /maintenance/reconcile.
// Запускает синхронный цикл reconciliation и возвращает отчёт.
// Если reconciliation уже выполняется — 409.
func (h *MaintenanceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, inProgress, err := h.reconciler.RunOnce(r.Context())
	if inProgress {
		apierrors.ReconcileInProgress(w)
		return
	}
	if err != nil {
		apierrors.InternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// toRetentionStatus переводит состояние планировщика в API-формат.
// Длительности передаются строками в формате Go (12h0m0s).
func toRetentionStatus(s service.RetentionStatus) generated.RetentionStatus {
	return generated.RetentionStatus{
		Active:   s.Active,
		Ttl:      s.TTL.String(),
		Interval: s.Interval.String(),
	}
}

// GetRetention обрабатывает GET /maintenance/retention.
func (h *MaintenanceHandler) GetRetention(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toRetentionStatus(h.retention.Status()))
}

// UpdateRetention обрабатывает PUT /maintenance/retention.
// ttl — новое время жизни файла, active — принудительный запуск/остановка.
func (h *MaintenanceHandler) UpdateRetention(w http.ResponseWriter, r *http.Request) {
	var req generated.UpdateRetentionJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}
	if req.Ttl == nil && req.Active == nil {
		apierrors.ValidationError(w, "Необходимо указать хотя бы одно поле (ttl или active)")
		return
	}

	// Валидация до применения: запрос применяется целиком или не применяется
	var ttl time.Duration
	if req.Ttl != nil {
		d, err := time.ParseDuration(*req.Ttl)
		if err != nil || d <= 0 {
			apierrors.ValidationError(w, fmt.Sprintf("Некорректный ttl: %q", *req.Ttl))
			return
		}
		ttl = d
	}

	if ttl > 0 {
		if err := h.retention.SetTTL(ttl); err != nil {
			apierrors.ValidationError(w, err.Error())
			return
		}
	}
	if req.Active != nil {
		if *req.Active {
			h.retention.ForceStart()
		} else {
			h.retention.ForceStop()
		}
	}

	writeJSON(w, http.StatusOK, toRetentionStatus(h.retention.Status()))
}

// sweepResponse — результат ручного sweep.
type sweepResponse struct {
	Deleted   int                       `json:"deleted"`
	Retention generated.RetentionStatus `json:"retention"`
}

// Sweep обрабатывает POST /maintenance/retention/sweep.
func (h *MaintenanceHandler) Sweep(w http.ResponseWriter, _ *http.Request) {
	deleted := h.retention.Sweep()
	writeJSON(w, http.StatusOK, sweepResponse{
		Deleted:   deleted,
		Retention: toRetentionStatus(h.retention.Status()),
	})
}
