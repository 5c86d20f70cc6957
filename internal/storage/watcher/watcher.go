// Пакет watcher — наблюдение за директорией загрузок через fsnotify.
//
// Watcher отправляет в канал Events уведомления added/deleted/updated
// для любых изменений директории, включая вызванные самим сервисом.
// Доставка «как минимум один раз»: получатель обязан быть идемпотентным.
//
// Уведомления added/updated отправляются только после завершения записи:
// размер и mtime файла должны оставаться неизменными в течение окна
// стабильности. Скрытые файлы (в том числе временные файлы загрузки)
// и поддиректории игнорируются.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bigkaa/flyshare/internal/domain/model"
	"github.com/bigkaa/flyshare/internal/storage/filestore"
)

// Значения по умолчанию.
const (
	DefaultStability    = 500 * time.Millisecond
	DefaultPollInterval = 100 * time.Millisecond
	eventBufferSize     = 256
)

// Options — параметры Watcher.
type Options struct {
	// Stability — сколько размер/mtime файла должны не меняться,
	// чтобы запись считалась завершённой
	Stability time.Duration
	// PollInterval — период проверки ожидающих файлов
	PollInterval time.Duration
}

// pendingWrite — файл, запись которого ещё не завершилась.
type pendingWrite struct {
	size        int64
	modTime     time.Time
	stableSince time.Time
}

// Watcher — наблюдатель за директорией загрузок.
type Watcher struct {
	dir    string
	opts   Options
	fsw    *fsnotify.Watcher
	events chan model.StorageEvent
	logger *slog.Logger
	now    func() time.Time

	// Состояние, принадлежащее горутине loop
	known   map[string]bool
	pending map[string]*pendingWrite

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New создаёт Watcher для директории dir. Наблюдение начинается в Start.
func New(dir string, opts Options, logger *slog.Logger) (*Watcher, error) {
	if opts.Stability <= 0 {
		opts.Stability = DefaultStability
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь %s: %w", dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:     abs,
		opts:    opts,
		fsw:     fsw,
		events:  make(chan model.StorageEvent, eventBufferSize),
		logger:  logger.With(slog.String("component", "watcher")),
		now:     time.Now,
		known:   make(map[string]bool),
		pending: make(map[string]*pendingWrite),
		done:    make(chan struct{}),
	}, nil
}

// Events возвращает канал уведомлений. Канал закрывается после Stop.
func (w *Watcher) Events() <-chan model.StorageEvent {
	return w.events
}

// Start подписывается на события директории, выполняет начальное
// сканирование (существующие файлы будут объявлены как added)
// и запускает горутину обработки.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return errors.New("watcher уже запущен или остановлен")
	}

	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("ошибка подписки на директорию %s: %w", w.dir, err)
	}

	// Начальное сканирование выполняется после подписки:
	// файл, созданный между сканированием и подпиской, не будет потерян
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("ошибка чтения директории %s: %w", w.dir, err)
	}
	now := w.now()
	initial := 0
	for _, entry := range entries {
		if filestore.IsIgnored(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}
		w.track(entry.Name(), now)
		initial++
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true

	go w.loop(loopCtx)

	w.logger.Info("Наблюдение за директорией запущено",
		slog.String("dir", w.dir),
		slog.Int("initial_files", initial),
		slog.Duration("stability", w.opts.Stability),
	)
	return nil
}

// Stop останавливает наблюдение и закрывает канал Events.
// Повторный вызов безопасен.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true

	if !w.started {
		w.fsw.Close()
		close(w.events)
		return
	}

	w.cancel()
	<-w.done
	w.logger.Info("Наблюдение за директорией остановлено")
}

// loop — основной цикл: события fsnotify и периодическая проверка
// ожидающих файлов. Тикер работает только пока есть ожидающие файлы.
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)
	defer w.fsw.Close()

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	for {
		if len(w.pending) > 0 && ticker == nil {
			ticker = time.NewTicker(w.opts.PollInterval)
			tick = ticker.C
		} else if len(w.pending) == 0 {
			stopTicker()
		}

		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.handleEvent(ctx, event) {
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Ошибка fsnotify", slog.String("error", err.Error()))

		case <-tick:
			if !w.checkPending(ctx) {
				return
			}
		}
	}
}

// handleEvent обрабатывает событие fsnotify. Возвращает false,
// если контекст отменён во время отправки уведомления.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if filepath.Dir(event.Name) != w.dir {
		return true
	}
	name := filepath.Base(event.Name)
	if filestore.IsIgnored(name) {
		return true
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, name)
		delete(w.known, name)
		return w.emit(ctx, model.StorageDeleted, name)

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return true
		}
		w.track(name, w.now())
	}
	return true
}

// track ставит файл в очередь ожидания завершения записи
// (или сбрасывает окно стабильности, если файл уже в очереди).
func (w *Watcher) track(name string, now time.Time) {
	info, err := os.Stat(filepath.Join(w.dir, name))
	if err != nil {
		return
	}
	w.pending[name] = &pendingWrite{
		size:        info.Size(),
		modTime:     info.ModTime(),
		stableSince: now,
	}
}

// checkPending проверяет ожидающие файлы и отправляет added/updated
// для тех, чья запись завершилась.
func (w *Watcher) checkPending(ctx context.Context) bool {
	now := w.now()

	for name, p := range w.pending {
		info, err := os.Stat(filepath.Join(w.dir, name))
		if err != nil {
			// Файл исчез до завершения записи — событие Remove придёт отдельно
			delete(w.pending, name)
			continue
		}

		if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
			p.size = info.Size()
			p.modTime = info.ModTime()
			p.stableSince = now
			continue
		}

		if now.Sub(p.stableSince) < w.opts.Stability {
			continue
		}

		delete(w.pending, name)
		kind := model.StorageAdded
		if w.known[name] {
			kind = model.StorageUpdated
		}
		w.known[name] = true
		if !w.emit(ctx, kind, name) {
			return false
		}
	}
	return true
}

// emit отправляет уведомление, блокируясь до приёма или отмены контекста.
func (w *Watcher) emit(ctx context.Context, kind model.StorageEventKind, name string) bool {
	w.logger.Debug("Изменение в директории",
		slog.String("event", string(kind)),
		slog.String("filename", name),
	)

	select {
	case w.events <- model.StorageEvent{Kind: kind, Filename: name}:
		return true
	case <-ctx.Done():
		return false
	}
}
