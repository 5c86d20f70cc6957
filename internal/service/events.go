// events.go — шина событий FileService.
//
// Подписчики получают события в порядке публикации. Publish блокируется,
// пока каждый подписчик не примет событие или не отпишется: события
// filesChanged не теряются. Медленный подписчик обязан отписаться
// (см. realtime.Hub — медленные клиенты отключаются там, а не здесь).
package service

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

// EventType — тип события FileService. Значения совпадают с именами
// сообщений real-time канала.
type EventType string

const (
	// EventFilesChanged — список файлов изменился
	EventFilesChanged EventType = "files-changed"
	// EventProcessingStarted — начата обработка загрузки
	EventProcessingStarted EventType = "file-processing-started"
	// EventProcessingCompleted — загрузка или согласование завершены
	EventProcessingCompleted EventType = "file-processing-completed"
	// EventProcessingError — ошибка загрузки или согласования
	EventProcessingError EventType = "file-processing-error"
)

const subscriberBufferSize = 256

var eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flyshare_events_published_total",
	Help: "Общее количество опубликованных событий FileService",
}, []string{"event"})

// Event — событие FileService.
type Event struct {
	Type EventType
	// Filename — имя файла (пусто для filesChanged)
	Filename string
	// File — метаданные (только для processingCompleted)
	File *model.FileRecord
	// Err — текст ошибки (только для processingError)
	Err string
}

// Subscription — подписка на шину событий.
type Subscription struct {
	bus  *EventBus
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// Events возвращает канал событий подписки.
// Канал не закрывается: завершение подписки — через Done.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Done закрывается после Close.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close отписывает подписчика. Повторный вызов безопасен.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
}

// EventBus — шина событий с несколькими подписчиками.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

// NewEventBus создаёт шину событий.
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "event_bus")),
	}
}

// Subscribe регистрирует нового подписчика.
func (b *EventBus) Subscribe() *Subscription {
	s := &Subscription{
		bus:  b,
		ch:   make(chan Event, subscriberBufferSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish доставляет событие всем текущим подписчикам.
// Блокировка не удерживается во время отправки.
func (b *EventBus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	eventsPublishedTotal.WithLabelValues(string(ev.Type)).Inc()
	b.logger.Debug("Событие",
		slog.String("event", string(ev.Type)),
		slog.String("filename", ev.Filename),
		slog.Int("subscribers", len(subs)),
	)

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}

func (b *EventBus) subscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *EventBus) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}
