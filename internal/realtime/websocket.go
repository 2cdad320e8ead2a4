package realtime

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Serve pumps hub messages for userID to the socket until the client goes
// away. Inbound frames are only read to notice the disconnect.
func Serve(h *Hub, conn *websocket.Conn, userID uuid.UUID) {
	client := NewClient(userID)
	h.Register(client)
	defer h.Unregister(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[realtime] write to %s failed: %v", client.ID, err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Unregister(client)
	<-done
}
