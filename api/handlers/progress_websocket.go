package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local UI clients only
	},
}

// progressMessage is the wire envelope pushed to WebSocket subscribers
type progressMessage struct {
	Type   string                 `json:"type"` // progress | result
	Event  *domain.ProgressEvent  `json:"event,omitempty"`
	Result *domain.TerminalResult `json:"result,omitempty"`
}

// ProgressHub broadcasts download progress to connected WebSocket clients.
// Events arrive from the orchestrator's single consumer goroutine, so writes
// stay in line-emission order.
type ProgressHub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewProgressHub creates a new progress hub
func NewProgressHub(logger *zap.Logger) *ProgressHub {
	return &ProgressHub{
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket handles GET /api/v1/progress/ws
func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	h.logger.Info("Progress subscriber connected",
		zap.String("remote_addr", c.Request.RemoteAddr))

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain client messages; subscribers only listen
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastEvent pushes a progress event to all subscribers
func (h *ProgressHub) BroadcastEvent(event domain.ProgressEvent) {
	h.broadcast(progressMessage{Type: "progress", Event: &event})
}

// BroadcastResult pushes a terminal result to all subscribers
func (h *ProgressHub) BroadcastResult(result domain.TerminalResult) {
	h.broadcast(progressMessage{Type: "result", Result: &result})
}

func (h *ProgressHub) broadcast(msg progressMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
