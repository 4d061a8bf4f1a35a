package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// WSHandler streams session progress to watchers over websockets.
type WSHandler struct {
	service  *app.SessionManager
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionManager) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type progressMessage struct {
	Type    string          `json:"type"`
	Payload domain.Progress `json:"payload"`
}

// ServeWS upgrades the request and forwards progress updates for one
// session until the client disconnects. The first message is the
// session's current state.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	// Subscribe before upgrading so a missing session still maps to a
	// plain HTTP status.
	updates, cancel, err := h.service.Watch(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, "upstream dependency failed", http.StatusBadGateway)
		}
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only detects the peer going away; inbound
	// messages carry no meaning on this endpoint.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(progressMessage{Type: "progress", Payload: update}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
