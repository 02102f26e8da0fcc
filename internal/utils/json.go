package utils

import (
	"encoding/json"
	"io"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WritePrettyJSON writes v indented by two spaces, the layout of gallery-data.json.
func WritePrettyJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// SendJSON sends a JSON payload to a WebSocket connection.
// Fiber's websocket connection is not safe for concurrent writes; callers serialize.
func SendJSON(c *websocket.Conn, payload interface{}) error {
	return c.WriteJSON(payload)
}

// LogError logs an error if it's not nil
func LogError(logger *zap.Logger, err error, context string) {
	if err != nil {
		logger.Error(context, zap.Error(err))
	}
}
