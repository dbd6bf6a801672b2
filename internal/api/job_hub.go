package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время на запись одного сообщения клиенту.
	writeWait = 10 * time.Second
	// Время ожидания следующего pong.
	pongWait = 60 * time.Second
	// Период пингов, меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Клиент ничего не присылает, кроме служебных кадров.
	maxMessageSize = 512
	sendBufferSize = 64
)

// HubMessage - сообщение, отправляемое клиенту по websocket.
type HubMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type hubClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// JobHub рассылает обновления задач генерации подключённым клиентам.
// Удовлетворяет jobs.Notifier.
type JobHub struct {
	mu       sync.RWMutex
	clients  map[string]map[*hubClient]struct{}
	closed   bool
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewJobHub создаёт хаб. Пустой allowedOrigins разрешает любой Origin.
func NewJobHub(allowedOrigins []string, logger *zap.Logger) *JobHub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	h := &JobHub{
		clients: make(map[string]map[*hubClient]struct{}),
		logger:  logger.Named("JobHub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
	return h
}

// @Summary Подписка на статусы задач
// @Description WebSocket. Токен передаётся в query-параметре token. Сообщения имеют вид {"type":"job_update","payload":{...}}.
// @Tags jobs
// @Param token query string true "JWT"
// @Success 101
// @Router /ws [get]
func (h *JobHub) ServeWS(c *gin.Context) {
	uid := userID(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Warn("Failed to upgrade connection", zap.String("user_id", uid), zap.Error(err))
		return
	}

	client := &hubClient{userID: uid, conn: conn, send: make(chan []byte, sendBufferSize)}
	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	h.logger.Info("WebSocket connection established", zap.String("user_id", uid))

	log := h.logger.With(zap.String("user_id", uid))
	go h.writePump(client, log)
	go h.readPump(client, log)
}

// SendToUser отправляет сообщение во все соединения пользователя.
// Медленный клиент с заполненным буфером теряет сообщение.
func (h *JobHub) SendToUser(userID, messageType string, payload any) {
	data, err := json.Marshal(HubMessage{Type: messageType, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal hub message", zap.String("type", messageType), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("Client send buffer is full, message dropped",
				zap.String("user_id", userID),
				zap.String("type", messageType),
			)
		}
	}
}

// Connections возвращает число открытых соединений пользователя.
func (h *JobHub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close закрывает все соединения. Новые подключения после Close отклоняются.
func (h *JobHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for uid, set := range h.clients {
		for client := range set {
			close(client.send)
		}
		delete(h.clients, uid)
	}
}

func (h *JobHub) register(client *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*hubClient]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	return true
}

// unregister удаляет клиента и закрывает его канал ровно один раз.
func (h *JobHub) unregister(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *JobHub) readPump(client *hubClient, log *zap.Logger) {
	defer func() {
		h.unregister(client)
		_ = client.conn.Close()
		log.Debug("readPump finished")
	}()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			} else {
				log.Info("WebSocket connection closed")
			}
			return
		}
		// входящие сообщения не используются
	}
}

func (h *JobHub) writePump(client *hubClient, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
		log.Debug("writePump finished")
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Ping failed", zap.Error(err))
				return
			}
		}
	}
}
