package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"venueBookerAPI/middleware"
	"venueBookerAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub *services.Hub
}

func NewWSHandler(hub *services.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
	}
}

// Connect upgrades the request and registers the client with the scopes named
// in the query string, e.g. /ws?scopes=venues,reviews:ab12. Further scope
// changes go through subscribe/unsubscribe frames; everything is torn down
// when the connection closes.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetClerkID(r.Context())

	var scopes []string
	if raw := r.URL.Query().Get("scopes"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Could not upgrade connection: %v", err)
		return
	}

	client := services.NewWSClient(h.hub, conn, userID, scopes)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
