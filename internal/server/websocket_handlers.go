package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventStreamHandler handles WebSocket connections for the live event feed.
// Every domain event (new profiles, posts, comments, reactions, follow
// changes) is pushed to every connected client as a JSON frame.
func (s *Server) EventStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		// Identity is set by WebSocketAuthRequired before the upgrade.
		identity, ok := conn.Locals("identity").(string)
		if !ok || identity == "" {
			log.Printf("WebSocket events: unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(identity, conn)
		if err != nil {
			log.Printf("WebSocket events: failed to register %s: %v", identity, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		log.Printf("WebSocket: %s connected to event stream", identity)

		// The event feed is one-way; incoming frames only keep the
		// connection alive.
		go client.WritePump()
		client.ReadPump()
	})
}
