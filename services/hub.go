// Hub handles networking for the live-update channel. Clients are not added to
// the clients map directly: they are pushed into the register channel and the
// Run() loop picks them up one by one, so the map is only ever touched from a
// single goroutine. The broadcast channel works the same way -- Publish puts an
// envelope in, Run() fans it out to every client subscribed to its scope.
package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"venueBookerAPI/internal/types/event"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var wsConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "ws_connected_clients",
	Help: "Number of currently connected websocket clients",
})

func init() {
	prometheus.MustRegister(wsConnectedClients)
}

// Broadcaster is what the domain services see: fire-and-forget publish plus a
// cheap presence check so the message service can fall back to push
// notifications for offline receivers.
type Broadcaster interface {
	Publish(kind event.Kind, scope string, payload any)
	HasSubscriber(scope string) bool
}

type outbound struct {
	scope string
	data  []byte
}

type subscription struct {
	client *WSClient
	scope  string
	add    bool
}

type Hub struct {
	Register   chan *WSClient
	Unregister chan *WSClient
	Subscribe  chan subscription
	broadcast  chan outbound

	clients map[*WSClient]bool

	// scopeCount mirrors the per-scope subscriber totals maintained by Run()
	// so HasSubscriber can be answered from any goroutine.
	mu         sync.RWMutex
	scopeCount map[string]int
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *WSClient),
		Unregister: make(chan *WSClient),
		Subscribe:  make(chan subscription),
		broadcast:  make(chan outbound, 256),
		clients:    make(map[*WSClient]bool),
		scopeCount: make(map[string]int),
	}
}

// Publish marshals the envelope once and queues it for fan-out. Delivery to a
// disconnected or slow subscriber is never reported back to the publisher.
func (h *Hub) Publish(kind event.Kind, scope string, payload any) {
	env, err := event.New(kind, scope, payload)
	if err != nil {
		log.Printf("[Hub] Dropping %s event for scope %s: %v", kind, scope, err)
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[Hub] Dropping %s event for scope %s: %v", kind, scope, err)
		return
	}

	select {
	case h.broadcast <- outbound{scope: scope, data: data}:
	default:
		log.Printf("[Hub] Broadcast queue full, dropping %s event for scope %s", kind, scope)
	}
}

func (h *Hub) HasSubscriber(scope string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.scopeCount[scope] > 0
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			for scope := range client.scopes {
				h.addScope(scope, 1)
			}
			wsConnectedClients.Inc()
			log.Printf("[Hub] Client connected (user=%s). Count: %d", client.userID, len(h.clients))

		case client := <-h.Unregister:
			h.dropClient(client)

		case sub := <-h.Subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			if sub.add {
				if !sub.client.scopes[sub.scope] {
					sub.client.scopes[sub.scope] = true
					h.addScope(sub.scope, 1)
				}
			} else {
				if sub.client.scopes[sub.scope] {
					delete(sub.client.scopes, sub.scope)
					h.addScope(sub.scope, -1)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.scopes[msg.scope] {
					continue
				}
				select {
				case client.Send <- msg.data:
				default:
					// Slow consumer, drop it. Publish is fire-and-forget.
					h.dropClient(client)
				}
			}

		case <-ctx.Done():
			// Tear down through dropClient so the gauge and scope counts
			// return to zero.
			for client := range h.clients {
				h.dropClient(client)
			}
			return
		}
	}
}

func (h *Hub) dropClient(client *WSClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	for scope := range client.scopes {
		h.addScope(scope, -1)
	}
	wsConnectedClients.Dec()
	log.Printf("[Hub] Client disconnected (user=%s). Count: %d", client.userID, len(h.clients))
}

func (h *Hub) addScope(scope string, delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scopeCount[scope] += delta
	if h.scopeCount[scope] <= 0 {
		delete(h.scopeCount, scope)
	}
}

// WSClient is the middleman between one websocket connection and the hub.
// Its subscriptions live exactly as long as the connection; disconnecting
// implicitly unsubscribes everything.
type WSClient struct {
	hub    *Hub
	conn   *websocket.Conn
	Send   chan []byte
	userID string
	scopes map[string]bool
}

func NewWSClient(hub *Hub, conn *websocket.Conn, userID string, scopes []string) *WSClient {
	c := &WSClient{
		hub:    hub,
		conn:   conn,
		Send:   make(chan []byte, 256),
		userID: userID,
		scopes: make(map[string]bool, len(scopes)),
	}
	for _, s := range scopes {
		if c.allowedScope(s) {
			c.scopes[s] = true
		}
	}
	return c
}

type wsControlPayload struct {
	Action string `json:"action"`
	Scope  string `json:"scope"`
}

// ReadPump consumes control frames from the peer. The only messages a client
// may send are subscribe/unsubscribe requests; domain mutations go through the
// REST surface.
func (c *WSClient) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var payload wsControlPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}

		switch payload.Action {
		case "subscribe":
			if !c.allowedScope(payload.Scope) {
				continue
			}
			c.hub.Subscribe <- subscription{client: c, scope: payload.Scope, add: true}
		case "unsubscribe":
			c.hub.Subscribe <- subscription{client: c, scope: payload.Scope, add: false}
		}
	}
}

// allowedScope rejects subscriptions to another user's message scope.
func (c *WSClient) allowedScope(scope string) bool {
	if scope == "" {
		return false
	}
	if scope == event.MessageScope(c.userID) {
		return true
	}
	if len(scope) > len("messages:") && scope[:len("messages:")] == "messages:" {
		return false
	}
	return true
}

// WritePump pushes queued events to the peer and keeps the connection alive
// with pings.
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
