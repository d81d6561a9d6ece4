package system

import (
	"trackdoc/internal/features/notification"
	"trackdoc/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WebSocketController attaches authenticated connections to the
// notification hub so approval and document events reach the browser
// without polling.
type WebSocketController struct {
	Hub    *notification.Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *notification.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		Hub:    hub,
		Logger: logger,
	}
}

func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	token := c.Query("token")
	claims, err := utils.ValidateToken(token)
	if err != nil {
		h.Logger.Debug("websocket auth failed", zap.Error(err))
		c.Close()
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.Close()
		return
	}

	h.Hub.Register(userID, c)
	defer h.Hub.Unregister(userID, c)

	// The server only pushes; drain the connection until the client
	// goes away.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
