package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"stackcalc/logger"
	"stackcalc/metrics"
	"stackcalc/models"
	"stackcalc/service/auth"
	"stackcalc/service/calculator"
)

const (
	// Время на запись одного сообщения
	writeWait = 10 * time.Second

	// Время ожидания pong от браузера
	pongWait = 60 * time.Second

	// Период ping, меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящей команды
	maxMessageSize = 4096
)

// Hub - websocket-подписки на состояние сессий. Каждое изменение сессии
// отправляется всем её соединениям; по тому же соединению браузер может
// присылать команды.
type Hub struct {
	calc     *calculator.Calculator
	issuer   *auth.Issuer
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	log     *log.Logger
}

type client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan models.State
	done      chan struct{}
	closeOnce sync.Once
}

func NewHub(calc *calculator.Calculator, issuer *auth.Issuer, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		calc:   calc,
		issuer: issuer,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		clients: make(map[*client]struct{}),
		log:     logger.With("ws"),
	}
}

// Len - количество открытых соединений
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.issuer.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	manager := h.calc.Sessions()
	manager.Resume(r.Context(), sessionID)
	state, err := manager.State(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan models.State, 16),
		done:      make(chan struct{}),
	}
	c.push(state)

	unsubscribe, err := manager.Subscribe(sessionID, func(state models.State) {
		if !c.push(state) {
			h.log.Debug("dropping state for slow client", "session", sessionID)
		}
	})
	if err != nil {
		conn.Close()
		return
	}

	h.register(c)
	go h.writePump(c)
	h.readPump(c)

	unsubscribe()
	h.unregister(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.ActiveWebSocketConnections.Set(float64(n))
	h.log.Info("websocket connected", "session", c.sessionID, "total", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	metrics.ActiveWebSocketConnections.Set(float64(n))
	h.log.Info("websocket disconnected", "session", c.sessionID, "total", n)
}

// Close закрывает все соединения (при остановке сервера)
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// push - неблокирующая отправка; отстающий клиент получит следующий снимок
func (c *client) push(state models.State) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- state:
		return true
	default:
		return false
	}
}

// readPump читает команды вида {"command": "..."} до закрытия соединения
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "session", c.sessionID, "err", err)
			}
			return
		}

		var req models.CommandRequest
		if err := json.Unmarshal(message, &req); err != nil {
			h.log.Debug("bad websocket message", "session", c.sessionID, "err", err)
			continue
		}

		// изменения приходят через подписку, ответ нужен только для сообщений
		state, err := h.calc.Execute(context.Background(), c.sessionID, req.Command)
		if err != nil {
			h.log.Warn("command failed", "session", c.sessionID, "err", err)
			return
		}
		if state.Message != "" {
			c.push(state)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case state := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(state); err != nil {
				h.log.Debug("websocket write failed", "session", c.sessionID, "err", err)
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
