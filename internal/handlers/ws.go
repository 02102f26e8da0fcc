package handlers

import (
	"time"

	"photo-gallery/internal/models"
	"photo-gallery/internal/services"
	"photo-gallery/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventConnected     = "connected"
	EventSnapshot      = "snapshot"
	EventDataPublished = "data_published"
)

// SnapshotMessage wraps a draft state for admin clients.
func SnapshotMessage(state interface{}) models.WSMessage {
	return models.WSMessage{Event: EventSnapshot, Timestamp: time.Now().UnixMilli(), Data: state}
}

// ManageSocketHandler streams draft snapshots to an admin page. Clients only
// listen; anything they send is discarded.
func ManageSocketHandler(hub *Hub, svc *services.ManageService, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		connID := uuid.New().String()
		out := hub.Register(connID)

		defer func() {
			hub.Unregister(connID)
			c.Close()
		}()

		if err := utils.SendJSON(c, models.WSMessage{Event: EventConnected, Message: "Connected to gallery editor"}); err != nil {
			return
		}
		if err := utils.SendJSON(c, SnapshotMessage(svc.Snapshot())); err != nil {
			return
		}

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						logger.Debug("websocket read", zap.String("conn_id", connID), zap.Error(err))
					}
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-out:
				if !ok {
					return
				}
				if err := utils.SendJSON(c, msg); err != nil {
					utils.LogError(logger, err, "websocket write")
					return
				}
			case <-closed:
				return
			}
		}
	})
}

// WSUpgradeMiddleware rejects plain HTTP requests to websocket routes.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
