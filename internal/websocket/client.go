package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one websocket connection watching a workflow, optionally
// narrowed to a single page.
type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	WorkflowID uuid.UUID
	Send       chan []byte

	mu   sync.RWMutex
	page string
}

// watchRequest is the only frame a client sends. An empty page watches the
// whole workflow again.
type watchRequest struct {
	Type string `json:"type"`
	Page string `json:"page"`
}

func NewClient(hub *Hub, conn *websocket.Conn, workflowID uuid.UUID, page string) *Client {
	return &Client{
		Hub:        hub,
		Conn:       conn,
		WorkflowID: workflowID,
		Send:       make(chan []byte, sendBuffer),
		page:       page,
	}
}

func (c *Client) Page() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

func (c *Client) setPage(page string) {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
}

// wants reports whether an event of page should reach this client.
func (c *Client) wants(page string) bool {
	filter := c.Page()
	return filter == "" || page == "" || filter == page
}

func (c *Client) handleFrame(data []byte) {
	var req watchRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Type != "watch" {
		c.Hub.logger.Debug("Client", "Ignoring client frame", map[string]interface{}{"workflow_id": c.WorkflowID})
		return
	}
	c.setPage(req.Page)
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"workflow_id": c.WorkflowID,
					"error":       err.Error(),
				})
			}
			return
		}
		if kind == websocket.TextMessage {
			c.handleFrame(data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
