// reconcile.go — сверка директории загрузок с хранилищем метаданных.
//
// Reconciliation сравнивает:
//   - файлы в директории с записями метаданных
//   - размеры файлов с размерами в записях
//
// Обнаруживает и исправляет:
//   - orphaned_file: файл без записи (запись создаётся)
//   - orphaned_record: запись без файла (запись удаляется)
//   - size_mismatch: размер в записи не совпадает с файлом (запись обновляется)
//
// Уведомления watcher исправляют расхождения сразу. Сверка — страховка
// на случай потерянных уведомлений и рестартов; запускается периодически
// (FLYSHARE_RECONCILE_INTERVAL) и через POST /maintenance/reconcile.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/lifecycle"
	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
)

// Prometheus метрики Reconciliation
var (
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_reconcile_runs_total",
		Help: "Общее количество запусков reconciliation",
	})

	reconcileIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flyshare_reconcile_issues_total",
		Help: "Общее количество проблем, обнаруженных reconciliation",
	}, []string{"type"})

	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flyshare_reconcile_duration_seconds",
		Help:    "Длительность выполнения reconciliation в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// IssueType — тип расхождения.
type IssueType string

const (
	IssueOrphanedFile   IssueType = "orphaned_file"
	IssueOrphanedRecord IssueType = "orphaned_record"
	IssueSizeMismatch   IssueType = "size_mismatch"
)

// ReconcileIssue — обнаруженное расхождение.
type ReconcileIssue struct {
	Type        IssueType `json:"type"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	Repaired    bool      `json:"repaired"`
}

// ReconcileSummary — сводка по типам расхождений.
type ReconcileSummary struct {
	OK              int `json:"ok"`
	OrphanedFiles   int `json:"orphanedFiles"`
	OrphanedRecords int `json:"orphanedRecords"`
	SizeMismatches  int `json:"sizeMismatches"`
}

// ReconcileReport — результат сверки.
type ReconcileReport struct {
	StartedAt    time.Time        `json:"startedAt"`
	CompletedAt  time.Time        `json:"completedAt"`
	FilesChecked int              `json:"filesChecked"`
	Issues       []ReconcileIssue `json:"issues"`
	Summary      ReconcileSummary `json:"summary"`
}

// Reconciler выполняет одну сверку.
type Reconciler interface {
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}

// Reconcile сверяет директорию загрузок с метаданными и исправляет
// расхождения. Каждое имя обрабатывается под его мьютексом; состояние
// перепроверяется под мьютексом, чтобы не конфликтовать с загрузкой
// или уведомлением, пришедшими во время сверки.
func (s *FileService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{
		StartedAt: s.now().UTC(),
		Issues:    make([]ReconcileIssue, 0),
	}

	files, err := s.storage.List()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории загрузок: %w", err)
	}
	recs, err := s.meta.List()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}

	byName := make(map[string]model.FileRecord, len(recs))
	for _, r := range recs {
		byName[r.Filename] = r
	}
	onDisk := make(map[string]bool, len(files))

	changed := false
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		onDisk[f.Name] = true

		rec, ok := byName[f.Name]
		switch {
		case !ok:
			issue := s.repairOrphanedFile(f.Name)
			report.Issues = append(report.Issues, issue)
			changed = changed || issue.Repaired
		case rec.Size != f.Size:
			issue := s.repairSizeMismatch(f.Name)
			report.Issues = append(report.Issues, issue)
			changed = changed || issue.Repaired
		default:
			report.Summary.OK++
		}
	}

	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onDisk[r.Filename] {
			continue
		}
		issue := s.repairOrphanedRecord(r.Filename)
		report.Issues = append(report.Issues, issue)
		changed = changed || issue.Repaired
	}

	for _, issue := range report.Issues {
		switch issue.Type {
		case IssueOrphanedFile:
			report.Summary.OrphanedFiles++
		case IssueOrphanedRecord:
			report.Summary.OrphanedRecords++
		case IssueSizeMismatch:
			report.Summary.SizeMismatches++
		}
	}

	report.FilesChecked = len(files)
	report.CompletedAt = s.now().UTC()

	if changed {
		s.bus.Publish(Event{Type: EventFilesChanged})
	}
	return report, nil
}

func (s *FileService) repairOrphanedFile(filename string) ReconcileIssue {
	issue := ReconcileIssue{
		Type:        IssueOrphanedFile,
		Filename:    filename,
		Description: "Файл в директории без записи метаданных",
	}

	unlock := s.locks.Lock(filename)
	defer unlock()

	if s.tracker.State(filename) == lifecycle.Deleting {
		return issue
	}
	if rec, err := s.meta.Get(filename); err != nil || rec != nil {
		// Запись появилась во время сверки или хранилище недоступно
		issue.Repaired = err == nil
		return issue
	}

	info, err := s.storage.Stat(filename)
	if err != nil {
		return issue
	}
	if err := s.meta.Put(filename, s.synthesize(info)); err != nil {
		s.logger.Error("Reconciliation: ошибка создания записи",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return issue
	}
	s.markPresent(filename)
	issue.Repaired = true
	return issue
}

func (s *FileService) repairOrphanedRecord(filename string) ReconcileIssue {
	issue := ReconcileIssue{
		Type:        IssueOrphanedRecord,
		Filename:    filename,
		Description: "Запись метаданных без файла в директории",
	}

	unlock := s.locks.Lock(filename)
	defer unlock()

	if _, err := s.storage.Stat(filename); !errors.Is(err, filestore.ErrNotFound) {
		// Файл появился во время сверки
		issue.Repaired = err == nil
		return issue
	}
	if err := s.meta.Delete(filename); err != nil {
		s.logger.Error("Reconciliation: ошибка удаления записи",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return issue
	}
	s.tracker.Forget(filename)
	issue.Repaired = true
	return issue
}

func (s *FileService) repairSizeMismatch(filename string) ReconcileIssue {
	issue := ReconcileIssue{
		Type:        IssueSizeMismatch,
		Filename:    filename,
		Description: "Размер в записи метаданных не совпадает с файлом",
	}

	unlock := s.locks.Lock(filename)
	defer unlock()

	rec, err := s.meta.Get(filename)
	if err != nil || rec == nil {
		return issue
	}
	info, err := s.storage.Stat(filename)
	if err != nil {
		return issue
	}
	rec.Size = info.Size
	if err := s.meta.Put(filename, *rec); err != nil {
		s.logger.Error("Reconciliation: ошибка обновления записи",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return issue
	}
	issue.Repaired = true
	return issue
}

// ReconcileService — периодический запуск сверки.
type ReconcileService struct {
	reconciler Reconciler
	interval   time.Duration
	logger     *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool       // reconciliation в процессе выполнения
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewReconcileService создаёт сервис reconciliation.
func NewReconcileService(reconciler Reconciler, interval time.Duration, logger *slog.Logger) *ReconcileService {
	return &ReconcileService{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger.With(slog.String("component", "reconcile")),
	}
}

// Start запускает фоновую горутину reconciliation с периодическим тикером.
// Первая сверка выполняется сразу после старта.
func (rs *ReconcileService) Start(ctx context.Context) {
	rsCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel
	rs.done = make(chan struct{})

	go rs.run(rsCtx)

	rs.logger.Info("Reconciliation запущена",
		slog.String("interval", rs.interval.String()),
	)
}

// Stop останавливает фоновой процесс reconciliation.
func (rs *ReconcileService) Stop() {
	if rs.cancel == nil {
		return
	}
	rs.cancel()
	<-rs.done
	rs.logger.Info("Reconciliation остановлена")
}

func (rs *ReconcileService) isInProgress() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.inProcess
}

// run — основной цикл фоновой горутины.
func (rs *ReconcileService) run(ctx context.Context) {
	defer close(rs.done)

	rs.runLogged(ctx)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.runLogged(ctx)
		}
	}
}

func (rs *ReconcileService) runLogged(ctx context.Context) {
	if _, _, err := rs.RunOnce(ctx); err != nil && ctx.Err() == nil {
		rs.logger.Error("Ошибка reconciliation", slog.String("error", err.Error()))
	}
}

// RunOnce выполняет одну сверку.
// Если сверка уже выполняется, возвращает nil, true, nil.
func (rs *ReconcileService) RunOnce(ctx context.Context) (*ReconcileReport, bool, error) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Reconciliation уже выполняется, пропуск")
		return nil, true, nil
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	start := time.Now()
	rs.logger.Debug("Reconciliation начата")

	report, err := rs.reconciler.Reconcile(ctx)
	reconcileRunsTotal.Inc()
	reconcileDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, false, err
	}

	for _, issue := range report.Issues {
		reconcileIssuesTotal.WithLabelValues(string(issue.Type)).Inc()
	}

	level := slog.LevelDebug
	if len(report.Issues) > 0 {
		level = slog.LevelInfo
	}
	rs.logger.Log(ctx, level, "Reconciliation завершена",
		slog.Int("files_checked", report.FilesChecked),
		slog.Int("issues", len(report.Issues)),
		slog.Int("ok", report.Summary.OK),
		slog.Duration("duration", time.Since(start)),
	)

	return report, false, nil
}
