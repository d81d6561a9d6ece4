package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Hub fans notifications out to connected websocket clients. A user may
// hold several connections (multiple tabs); all of them get the push.
type Hub struct {
	mu     sync.RWMutex
	conns  map[primitive.ObjectID]map[*websocket.Conn]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[primitive.ObjectID]map[*websocket.Conn]bool),
		logger: logger,
	}
}

func (h *Hub) Register(userID primitive.ObjectID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][conn] = true
}

func (h *Hub) Unregister(userID primitive.ObjectID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Push delivers the notification to every live connection of the user.
// Offline users simply miss the push; the record is still in Mongo for
// the next listing.
func (h *Hub) Push(userID primitive.ObjectID, notification *Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		h.logger.Warn("failed to marshal notification", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns[userID] {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("websocket push failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		}
	}
}
