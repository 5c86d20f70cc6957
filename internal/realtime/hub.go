// Пакет realtime — real-time канал flyshare поверх WebSocket.
//
// Hub владеет подключениями клиентов. Все операции над набором
// клиентов и все чтения списка файлов выполняются в горутине Run,
// поэтому снимок для нового клиента и последующие рассылки
// упорядочены. Клиент, чья очередь отправки переполнена, отключается
// и никогда не блокирует рассылку.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/flyshare/internal/domain/model"
)

const (
	// writeWait — таймаут записи одного сообщения
	writeWait = 10 * time.Second
	// pongWait — сколько ждать pong от клиента
	pongWait = 60 * time.Second
	// pingPeriod — период ping, меньше pongWait
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize — клиент ничего не отправляет, кроме управляющих кадров
	maxMessageSize = 512
	// sendBufferSize — очередь отправки клиента
	sendBufferSize = 64
)

// Prometheus метрики real-time канала
var (
	clientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flyshare_realtime_clients",
		Help: "Количество подключённых real-time клиентов",
	})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flyshare_realtime_messages_total",
		Help: "Общее количество разосланных real-time сообщений",
	}, []string{"event"})

	droppedClientsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyshare_realtime_dropped_clients_total",
		Help: "Общее количество клиентов, отключённых из-за переполнения очереди",
	})
)

// Lister — источник списка файлов для снимков.
type Lister interface {
	List() ([]model.FileRecord, error)
}

// Message — сообщение real-time канала: {"event": ..., "data": ...}.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ProcessingData — данные событий file-processing-*.
type ProcessingData struct {
	Filename string            `json:"filename"`
	FileInfo *model.FileRecord `json:"fileInfo,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// client — одно WebSocket-подключение.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// relayed — готовое сообщение для рассылки.
type relayed struct {
	event string
	data  []byte
}

// Hub — набор подключённых клиентов.
type Hub struct {
	lister   Lister
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	refresh    chan struct{}
	relay      chan relayed
	done       chan struct{}

	count atomic.Int64
}

// NewHub создаёт Hub. Рассылки начинаются после Run.
func NewHub(lister Lister, logger *slog.Logger) *Hub {
	return &Hub{
		lister: lister,
		logger: logger.With(slog.String("component", "realtime_hub")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Сервис работает в локальной сети без аутентификации
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		refresh:    make(chan struct{}),
		relay:      make(chan relayed),
		done:       make(chan struct{}),
	}
}

// ClientCount возвращает количество подключённых клиентов.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Done закрывается после завершения Run.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run обслуживает клиентов до отмены ctx. При завершении все
// подключения закрываются.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.updateCount()
			if msg, ok := h.listMessage(); ok {
				h.deliver(c, msg)
			}
			h.logger.Debug("Клиент подключён", slog.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("Клиент отключён", slog.Int("clients", len(h.clients)))
			}

		case <-h.refresh:
			msg, ok := h.listMessage()
			if !ok {
				continue
			}
			messagesTotal.WithLabelValues("files-changed").Inc()
			for c := range h.clients {
				h.deliver(c, msg)
			}

		case r := <-h.relay:
			messagesTotal.WithLabelValues(r.event).Inc()
			for c := range h.clients {
				h.deliver(c, r.data)
			}
		}
	}
}

// Refresh рассылает всем клиентам актуальный список файлов.
// Каждый вызов приводит ровно к одной рассылке.
func (h *Hub) Refresh(ctx context.Context) {
	select {
	case h.refresh <- struct{}{}:
	case <-ctx.Done():
	case <-h.done:
	}
}

// Relay рассылает всем клиентам сообщение event с данными data.
func (h *Hub) Relay(ctx context.Context, event string, data any) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		h.logger.Error("Ошибка кодирования сообщения",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case h.relay <- relayed{event: event, data: payload}:
	case <-ctx.Done():
	case <-h.done:
	}
}

// ServeHTTP переводит соединение на WebSocket и регистрирует клиента.
// Сразу после подключения клиент получает снимок списка файлов.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.logger.Warn("Ошибка перехода на WebSocket", slog.String("error", err.Error()))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// listMessage строит сообщение files-changed с текущим списком.
func (h *Hub) listMessage() ([]byte, bool) {
	files, err := h.lister.List()
	if err != nil {
		h.logger.Error("Ошибка чтения списка файлов", slog.String("error", err.Error()))
		return nil, false
	}
	if files == nil {
		files = []model.FileRecord{}
	}

	payload, err := json.Marshal(Message{Event: "files-changed", Data: files})
	if err != nil {
		h.logger.Error("Ошибка кодирования списка файлов", slog.String("error", err.Error()))
		return nil, false
	}
	return payload, true
}

// deliver ставит сообщение в очередь клиента; переполненный клиент отключается.
func (h *Hub) deliver(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		droppedClientsTotal.Inc()
		h.logger.Warn("Очередь клиента переполнена, клиент отключён")
		h.drop(c)
	}
}

// drop удаляет клиента; writePump закроет соединение.
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.updateCount()
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		h.drop(c)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	clientsGauge.Set(float64(len(h.clients)))
}

// readPump читает управляющие кадры до разрыва соединения.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Соединение закрыто клиентом", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump отправляет сообщения из очереди и ping.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
