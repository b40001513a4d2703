package bridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/renflow/renflow-desktop/internal/events"
	"github.com/renflow/renflow-desktop/internal/logging"
)

// Message is one event frame sent to the web UI
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// broadcastBuffer bounds the queue of frames waiting for the hub loop
const broadcastBuffer = 1024

// Hub maintains the set of connected UI clients and broadcasts events to them.
// It implements events.Emitter.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Frames waiting to be fanned out
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu  sync.RWMutex
	log *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logging.Component(logger, "hub"),
	}
}

// Run starts the hub's main event loop and returns when ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected", "remote", client.remote)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Debug("websocket client disconnected", "remote", client.remote)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				h.deliver(client, message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver queues message for one client without blocking. When the client's queue
// is full a progress frame is dropped, since a later one supersedes it; any other
// frame evicts the oldest queued frame.
func (h *Hub) deliver(client *Client, message Message) {
	select {
	case client.send <- message:
		return
	default:
	}

	if message.Event == events.DownloadBack {
		return
	}
	select {
	case <-client.send:
		h.log.Debug("websocket client lagging, evicted oldest frame", "remote", client.remote)
	default:
	}
	select {
	case client.send <- message:
	default:
		h.log.Warn("websocket client queue full, dropping event", "remote", client.remote, "event", message.Event)
	}
}

// Emit queues an event for every connected client. Progress frames are dropped when
// the broadcast queue is full; other events wait for the hub loop, which never
// blocks on a client. Run must be running.
func (h *Hub) Emit(event string, payload any) {
	message := Message{Event: event, Payload: payload}
	if event == events.DownloadBack {
		select {
		case h.broadcast <- message:
		default:
			h.log.Warn("websocket broadcast channel full, dropping event", "event", event)
		}
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RegisterClient registers a new client with the hub.
// Returns false once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient unregisters a client from the hub
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
