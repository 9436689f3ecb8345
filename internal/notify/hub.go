package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/pkg/middleware"
)

// Notification is the payload pushed to connected clients.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Notifier pushes a message to a specific account. Implementations must
// be safe for concurrent use; delivery is best-effort.
type Notifier interface {
	Notify(accountID uuid.UUID, level, message string)
}

// Hub tracks websocket connections per account and fans notifications
// out to them. Accounts with no open connection simply miss the push.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*websocket.Conn]struct{}
	logger  *zap.Logger

	upgrader websocket.Upgrader
}

// NewHub creates an empty notification hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*websocket.Conn]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin checks are handled by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Notify sends a notification to every open connection of the account.
// Dead connections are dropped on write failure.
func (h *Hub) Notify(accountID uuid.UUID, level, message string) {
	payload := Notification{
		Level:   level,
		Message: message,
		Time:    time.Now().UTC(),
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[accountID]))
	for c := range h.clients[accountID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(payload); err != nil {
			h.logger.Warn("dropping dead websocket connection",
				zap.String("account_id", accountID.String()),
				zap.Error(err))
			h.remove(accountID, c)
			_ = c.Close()
		}
	}
}

func (h *Hub) add(accountID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[accountID][c] = struct{}{}
}

func (h *Hub) remove(accountID uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[accountID], c)
	if len(h.clients[accountID]) == 0 {
		delete(h.clients, accountID)
	}
}

// ConnectionCount reports open connections for an account.
func (h *Hub) ConnectionCount(accountID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

// HandleWS upgrades the request to a websocket and keeps the connection
// registered until the client goes away. The route must sit behind the
// auth middleware.
func (h *Hub) HandleWS(c *gin.Context) {
	accountID, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.add(accountID, conn)
	defer func() {
		h.remove(accountID, conn)
		_ = conn.Close()
	}()

	// Drain control frames; clients only receive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
