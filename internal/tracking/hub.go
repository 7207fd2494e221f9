// Package tracking fans live location and chat events out to the websocket
// subscribers of a booking.
package tracking

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventLocation = "location"
	EventChat     = "chat"
	EventStatus   = "status"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	egressBuffer   = 16
)

// Event is the frame sent to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub keeps one room of clients per booking.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub accepts connections from the given origins; an empty list or "*" allows any.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{rooms: make(map[string]map[*Client]bool)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := map[string]bool{}
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.ToLower(o)] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		return set[strings.ToLower(strings.TrimRight(origin, "/"))]
	}
}

// Serve upgrades the request and subscribes the connection to bookingID until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, bookingID, email string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:       h,
		conn:      conn,
		bookingID: bookingID,
		email:     email,
		egress:    make(chan []byte, egressBuffer),
	}
	h.add(c)
	go c.writePump()
	go c.readPump()
	return nil
}

// Broadcast sends ev to every subscriber of bookingID. Slow clients are dropped.
func (h *Hub) Broadcast(bookingID string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encode live event", "booking_id", bookingID, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[bookingID] {
		select {
		case c.egress <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("dropping slow live subscriber", "booking_id", bookingID, "email", c.email)
		h.remove(c)
	}
}

// Subscribers returns how many clients watch bookingID.
func (h *Hub) Subscribers(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[bookingID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Client
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.bookingID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[c.bookingID] = room
	}
	room[c] = true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.bookingID]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.bookingID)
	}
	close(c.egress)
}

// Publish is Broadcast with the event assembled from its parts.
func (h *Hub) Publish(bookingID, eventType string, data any) {
	h.Broadcast(bookingID, Event{Type: eventType, Data: data})
}
