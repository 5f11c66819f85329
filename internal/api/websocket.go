package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stockparty/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket streams every broadcast topic to a viewer as
// {"event": <topic>, "data": <payload>} envelopes.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	stream, unsub := s.Bus.SubscribeAll(events.Broadcast, 256)
	defer unsub()

	// Viewers only listen, but the close handshake still needs a reader.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				unsub()
				return
			}
		}
	}()

	// Seed the freshly connected viewer before the next cycle lands.
	first := events.Envelope{Event: events.EventStateUpdate, Data: s.Game.Snapshot()}
	if err := conn.WriteJSON(first); err != nil {
		return
	}

	for msg := range stream {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}
