package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, workflowID uuid.UUID, page string) {
	client := NewClient(hub, c, workflowID, page)
	hub.register <- client

	go client.writePump()
	client.readPump()
}
