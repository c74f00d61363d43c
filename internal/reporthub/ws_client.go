package reporthub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"reportes/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// subscribeMessage lets a dashboard switch the entity it follows.
type subscribeMessage struct {
	Entity string `json:"entity"`
}

// WebSocketClient implements reporthub.Client for dashboards.
type WebSocketClient struct {
	ID   string
	Conn *websocket.Conn
	Hub  *ManagerService
	Send chan models.ReportEvent

	mu        sync.RWMutex
	filter    string
	closeOnce sync.Once
}

// NewWebSocketClient wraps conn. filter may be empty to follow everything.
func NewWebSocketClient(id string, conn *websocket.Conn, hub *ManagerService, filter string) *WebSocketClient {
	return &WebSocketClient{
		ID:     id,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.ReportEvent, 256),
		filter: filter,
	}
}

func (c *WebSocketClient) GetClientID() string                       { return c.ID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ReportEvent { return c.Send }

func (c *WebSocketClient) GetEntityFilter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *WebSocketClient) SetEntityFilter(entity string) {
	c.mu.Lock()
	c.filter = entity
	c.mu.Unlock()
}

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which stops writePump.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.Hub.UnregisterCh <- c:
		default:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.Logger.Warn("WebSocket read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}

		var msg subscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.Logger.Debug("Ignoring malformed client message", zap.String("client_id", c.ID), zap.Error(err))
			continue
		}
		c.SetEntityFilter(strings.TrimSpace(msg.Entity))
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(evt); err != nil {
				c.Hub.Logger.Debug("WebSocket write failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
