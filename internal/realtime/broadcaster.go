package realtime

import (
	"context"
	"log/slog"

	"github.com/bigkaa/flyshare/internal/service"
)

// EventSource — источник событий FileService.
type EventSource interface {
	Subscribe() *service.Subscription
}

// Broadcaster переводит события FileService в сообщения real-time канала:
// filesChanged — рассылка актуального списка, processing* — пересылка
// данных события.
type Broadcaster struct {
	source EventSource
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster создаёт Broadcaster.
func NewBroadcaster(source EventSource, hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		source: source,
		hub:    hub,
		logger: logger.With(slog.String("component", "broadcaster")),
	}
}

// Run обрабатывает события подписки sub до отмены ctx или остановки Hub.
// Подписка закрывается при выходе.
func (b *Broadcaster) Run(ctx context.Context, sub *service.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.hub.Done():
			return
		case ev := <-sub.Events():
			b.handle(ctx, ev)
		}
	}
}

// Start подписывается на события и запускает Run в отдельной горутине.
func (b *Broadcaster) Start(ctx context.Context) {
	sub := b.source.Subscribe()
	go b.Run(ctx, sub)
	b.logger.Info("Рассылка событий запущена")
}

func (b *Broadcaster) handle(ctx context.Context, ev service.Event) {
	switch ev.Type {
	case service.EventFilesChanged:
		b.hub.Refresh(ctx)

	case service.EventProcessingStarted:
		b.hub.Relay(ctx, string(ev.Type), ProcessingData{Filename: ev.Filename})

	case service.EventProcessingCompleted:
		if ev.File == nil {
			return
		}
		b.hub.Relay(ctx, string(ev.Type), ProcessingData{Filename: ev.Filename, FileInfo: ev.File})

	case service.EventProcessingError:
		msg := ev.Err
		if msg == "" {
			msg = "Unknown error"
		}
		b.hub.Relay(ctx, string(ev.Type), ProcessingData{Filename: ev.Filename, Error: msg})

	default:
		b.logger.Warn("Неизвестное событие", slog.String("event", string(ev.Type)))
	}
}
