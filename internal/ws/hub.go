package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

const hubBufferSize = 1024

// message is an encoded frame addressed to one connection, or to all when
// to is empty
type message struct {
	to   model.ConnectionID
	data []byte
}

// Hub tracks every live websocket client and fans events out to them.
// Delivery never blocks: frames for a full client buffer are dropped.
type Hub struct {
	clients map[model.ConnectionID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	outbound   chan message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.ConnectionID]*Client),
		logger:     logger.With(slog.String("component", "ws")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan message, hubBufferSize),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.id]; ok {
				close(old.send)
			}
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client registered",
				slog.String("connection_id", string(client.id)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("ws client unregistered",
					slog.String("connection_id", string(client.id)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case msg := <-h.outbound:
			h.deliver(msg)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.to != "" {
		client, ok := h.clients[msg.to]
		if !ok {
			return
		}
		select {
		case client.send <- msg.data:
		default:
			h.logger.Warn("ws message dropped - client buffer full",
				slog.String("connection_id", string(msg.to)))
		}
		return
	}

	sentCount := 0
	droppedCount := 0
	for id, client := range h.clients {
		select {
		case client.send <- msg.data:
			sentCount++
		default:
			droppedCount++
			h.logger.Warn("ws message dropped - client buffer full",
				slog.String("connection_id", string(id)))
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendTo queues an event for a single connection
func (h *Hub) SendTo(conn model.ConnectionID, evt model.Event) {
	if conn == "" {
		return
	}
	h.enqueue(message{to: conn}, evt)
}

// BroadcastAll queues an event for every connection
func (h *Hub) BroadcastAll(evt model.Event) {
	h.enqueue(message{}, evt)
}

func (h *Hub) enqueue(msg message, evt model.Event) {
	data, err := Encode(evt)
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("type", string(evt.Type)),
			slog.Any("error", err))
		return
	}
	msg.data = data

	select {
	case h.outbound <- msg:
	default:
		h.logger.Warn("ws event dropped - hub buffer full",
			slog.String("type", string(evt.Type)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
