package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer. The snapshot carries
// the jobs already in flight so a console connecting mid-run sees them
// without waiting for the next transition.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, snapshot []JobUpdate) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()

	for _, update := range snapshot {
		hub.Send(userID, update)
	}

	client.readPump() // Run readPump in current goroutine (handler)
}
