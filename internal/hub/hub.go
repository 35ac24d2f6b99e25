// Package hub fans registry events out to subscribers over Server-Sent
// Events.
package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const keepAliveInterval = 30 * time.Second

type client struct {
	id     string
	events chan []byte
}

// Hub owns the set of connected SSE clients and the broadcast loop.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan interface{}
}

// New creates a hub. Run must be started before clients connect.
func New() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan interface{}, 256),
	}
}

// Run drives registration and broadcast. It never returns; call it in its
// own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			log.Printf("sse: client %s connected (%d active)", c.id, h.ClientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.events)
			}
			h.mu.Unlock()
			log.Printf("sse: client %s disconnected (%d active)", c.id, h.ClientCount())

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("sse: dropping unmarshalable event: %v", err)
				continue
			}
			frame := []byte(fmt.Sprintf("data: %s\n\n", data))

			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.events <- frame:
				default:
					// Slow client; it misses this event rather
					// than stalling the loop.
					log.Printf("sse: client %s lagging, event skipped", c.id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues an event for every connected client. It never blocks;
// when the queue is full the event is dropped.
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("sse: broadcast queue full, event dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to an SSE stream and relays events until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	c := &client{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}
	h.register <- c
	defer func() { h.unregister <- c }()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, open := <-c.events:
			if !open {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
