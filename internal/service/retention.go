// retention.go — планировщик удаления файлов с истёкшим TTL.
//
// RetentionScheduler оборачивает BlobStore и поток уведомлений watcher:
// сам реализует Storage и пересылает уведомления дальше (в FileService).
//
// Планировщик активен тогда и только тогда, когда в хранилище есть файлы.
// Активация: сохранение файла, уведомление added/updated или непустое
// хранилище при старте. Деактивация: удаление, после которого хранилище
// пусто (проверка через SettleDelay), или sweep, опустошивший хранилище.
// В неактивном состоянии нет ни тикера, ни горутины sweep.
//
// Возраст файла считается от времени рождения файла в хранилище,
// а не от даты в метаданных. Удаление — только через BlobStore:
// метаданные очищаются цепочкой watcher → FileService.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
)

// Значения по умолчанию.
const (
	DefaultFileTTL         = 12 * time.Hour
	DefaultCleanupInterval = 6 * time.Hour
	DefaultSettleDelay     = 100 * time.Millisecond
)

// Prometheus метрики планировщика
var (
	retentionSweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_retention_sweeps_total",
		Help: "Общее количество запусков sweep",
	})

	retentionFilesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_retention_files_deleted_total",
		Help: "Общее количество файлов, удалённых по TTL",
	})

	retentionErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_retention_errors_total",
		Help: "Общее количество ошибок удаления при sweep",
	})

	retentionSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flyshare_retention_sweep_duration_seconds",
		Help:    "Длительность sweep в секундах",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	retentionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flyshare_retention_active",
		Help: "Активен ли планировщик удаления (1 — активен)",
	})
)

// ErrInvalidTTL — TTL должен быть положительным.
var ErrInvalidTTL = errors.New("TTL должен быть положительным")

// RetentionOptions — параметры планировщика.
type RetentionOptions struct {
	// TTL — время жизни файла
	TTL time.Duration
	// Interval — период sweep
	Interval time.Duration
	// SettleDelay — задержка проверки пустоты после удаления
	SettleDelay time.Duration
}

// RetentionStatus — состояние планировщика.
type RetentionStatus struct {
	Active   bool
	TTL      time.Duration
	Interval time.Duration
}

// RetentionScheduler — планировщик удаления файлов по TTL.
type RetentionScheduler struct {
	inner       BlobStore
	source      <-chan model.StorageEvent
	out         chan model.StorageEvent
	interval    time.Duration
	settleDelay time.Duration
	logger      *slog.Logger
	now         func() time.Time

	sweepMu sync.Mutex // защита от параллельного sweep

	mu          sync.Mutex
	ttl         time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	stopped     bool
	active      bool
	additions   uint64 // счётчик добавлений, см. checkAndManage
	loopCancel  context.CancelFunc
	settleTimer *time.Timer
	fwdDone     chan struct{}
}

// NewRetentionScheduler создаёт планировщик поверх inner.
// notifications — уведомления watcher о директории inner.
func NewRetentionScheduler(
	inner BlobStore,
	notifications <-chan model.StorageEvent,
	opts RetentionOptions,
	logger *slog.Logger,
) *RetentionScheduler {
	if opts.TTL <= 0 {
		opts.TTL = DefaultFileTTL
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultCleanupInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}

	return &RetentionScheduler{
		inner:       inner,
		source:      notifications,
		out:         make(chan model.StorageEvent),
		interval:    opts.Interval,
		settleDelay: opts.SettleDelay,
		ttl:         opts.TTL,
		logger:      logger.With(slog.String("component", "retention")),
		now:         time.Now,
		fwdDone:     make(chan struct{}),
	}
}

// Start запускает пересылку уведомлений и активирует планировщик,
// если хранилище не пусто.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("планировщик уже запущен")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.mu.Unlock()

	go s.forward()

	files, err := s.inner.List()
	if err != nil {
		return fmt.Errorf("ошибка чтения хранилища: %w", err)
	}
	if len(files) > 0 {
		s.ensureActive()
	}

	s.logger.Info("Планировщик удаления запущен",
		slog.String("ttl", s.TTL().String()),
		slog.String("interval", s.interval.String()),
		slog.Int("files", len(files)),
	)
	return nil
}

// Stop деактивирует планировщик, отменяет таймеры и останавливает
// пересылку уведомлений. Канал Notifications закрывается.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.deactivateLocked()
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.cancel()
	s.mu.Unlock()

	<-s.fwdDone
	s.logger.Info("Планировщик удаления остановлен")
}

// Notifications возвращает уведомления watcher после обработки планировщиком.
func (s *RetentionScheduler) Notifications() <-chan model.StorageEvent {
	return s.out
}

// Save сохраняет файл и активирует планировщик.
func (s *RetentionScheduler) Save(originalName string, r io.Reader) (*filestore.SaveResult, error) {
	res, err := s.inner.Save(originalName, r)
	if err != nil {
		return nil, err
	}
	s.ensureActive()
	return res, nil
}

// Stat делегирует во внутреннее хранилище.
func (s *RetentionScheduler) Stat(filename string) (*filestore.FileInfo, error) {
	return s.inner.Stat(filename)
}

// Path делегирует во внутреннее хранилище.
func (s *RetentionScheduler) Path(filename string) (string, error) {
	return s.inner.Path(filename)
}

// List делегирует во внутреннее хранилище.
func (s *RetentionScheduler) List() ([]filestore.FileInfo, error) {
	return s.inner.List()
}

// Delete удаляет файл и планирует проверку пустоты хранилища.
func (s *RetentionScheduler) Delete(filename string) error {
	if err := s.inner.Delete(filename); err != nil {
		return err
	}
	s.scheduleCheck()
	return nil
}

// TTL возвращает текущее время жизни файла.
func (s *RetentionScheduler) TTL() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl
}

// SetTTL изменяет время жизни файла. Применяется со следующего sweep.
func (s *RetentionScheduler) SetTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()

	s.logger.Info("TTL изменён", slog.String("ttl", ttl.String()))
	return nil
}

// IsActive сообщает, активен ли планировщик.
func (s *RetentionScheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Status возвращает состояние планировщика.
func (s *RetentionScheduler) Status() RetentionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RetentionStatus{Active: s.active, TTL: s.ttl, Interval: s.interval}
}

// ForceStart активирует планировщик независимо от наличия файлов.
func (s *RetentionScheduler) ForceStart() {
	s.ensureActive()
}

// ForceStop деактивирует планировщик. Он снова активируется
// при следующем добавлении файла.
func (s *RetentionScheduler) ForceStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivateLocked()
}

// Sweep удаляет файлы старше TTL и возвращает количество удалённых.
// Ошибка удаления одного файла не прерывает sweep.
// Если после sweep хранилище пусто, планировщик деактивируется.
func (s *RetentionScheduler) Sweep() int {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	start := time.Now()
	retentionSweepsTotal.Inc()

	files, err := s.inner.List()
	if err != nil {
		retentionErrorsTotal.Inc()
		s.logger.Error("Sweep: ошибка чтения хранилища", slog.String("error", err.Error()))
		return 0
	}

	now := s.now()
	ttl := s.TTL()
	deleted, failed := 0, 0

	for _, f := range files {
		if now.Sub(f.BirthTime) <= ttl {
			continue
		}
		if err := s.inner.Delete(f.Name); err != nil {
			failed++
			s.logger.Error("Sweep: ошибка удаления файла",
				slog.String("filename", f.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.logger.Debug("Sweep: файл удалён",
			slog.String("filename", f.Name),
			slog.Duration("age", now.Sub(f.BirthTime)),
		)
		deleted++
	}

	duration := time.Since(start)
	retentionFilesDeletedTotal.Add(float64(deleted))
	retentionErrorsTotal.Add(float64(failed))
	retentionSweepDuration.Observe(duration.Seconds())

	s.logger.Info("Sweep завершён",
		slog.Int("checked", len(files)),
		slog.Int("deleted", deleted),
		slog.Int("errors", failed),
		slog.Duration("duration", duration),
	)

	// Хранилище пусто после sweep (в том числе было пусто до него)
	if deleted == len(files) {
		s.checkAndManage()
	}
	return deleted
}

// forward пересылает уведомления watcher, обновляя состояние планировщика.
func (s *RetentionScheduler) forward() {
	defer close(s.fwdDone)
	defer close(s.out)

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-s.source:
			if !ok {
				return
			}

			switch ev.Kind {
			case model.StorageAdded, model.StorageUpdated:
				s.ensureActive()
			case model.StorageDeleted:
				s.scheduleCheck()
			}

			select {
			case s.out <- ev:
			case <-s.ctx.Done():
				return
			}
		}
	}
}

// ensureActive активирует планировщик, если он неактивен.
func (s *RetentionScheduler) ensureActive() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.additions++
	if s.active || !s.started || s.stopped {
		return
	}

	loopCtx, cancel := context.WithCancel(s.ctx)
	s.loopCancel = cancel
	s.active = true
	retentionActive.Set(1)

	go s.loop(loopCtx)

	s.logger.Info("Планировщик удаления активирован")
}

// deactivateLocked останавливает цикл sweep. Вызывается под s.mu.
func (s *RetentionScheduler) deactivateLocked() {
	if !s.active {
		return
	}
	s.loopCancel()
	s.loopCancel = nil
	s.active = false
	retentionActive.Set(0)

	s.logger.Info("Планировщик удаления деактивирован")
}

// scheduleCheck (пере)запускает отложенную проверку пустоты хранилища.
func (s *RetentionScheduler) scheduleCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleTimer = time.AfterFunc(s.settleDelay, s.checkAndManage)
}

// checkAndManage деактивирует планировщик, если хранилище пусто.
// Если во время чтения хранилища был добавлен файл, проверка отменяется.
func (s *RetentionScheduler) checkAndManage() {
	s.mu.Lock()
	additions := s.additions
	s.mu.Unlock()

	files, err := s.inner.List()
	if err != nil {
		s.logger.Error("Ошибка проверки хранилища", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(files) == 0 && s.additions == additions {
		s.deactivateLocked()
	}
}

// loop — цикл sweep активного планировщика.
func (s *RetentionScheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
