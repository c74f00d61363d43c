package handler

import (
	"net/http"

	"reportes/backend/internal/reporthub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket streams report events. ?entity= narrows the feed to one
// entity; the client may change it later by sending {"entity": "..."}.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	if h.Hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "live feed disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := reporthub.NewWebSocketClient(uuid.NewString(), conn, h.Hub, c.Query("entity"))
	if err := h.Hub.Register(c.Request.Context(), client); err != nil {
		h.Logger.Debug("WebSocket client not registered", zap.Error(err))
		conn.Close()
		return
	}
	client.Run()
}
