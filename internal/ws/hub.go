package ws

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type outbound struct {
	scope string
	data  []byte
}

// Hub fans pipeline events out to connected dashboards. A client with a
// scope only receives events for that scope; an unscoped client receives
// everything.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	// regMu orders registrations against the shutdown drain.
	regMu  sync.Mutex
	logger logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "ws"),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			h.drainRegistrations()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logrus.Fields{"scope": client.scope, "total_clients": total}).Debug("ws connected")

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				if c.scope == "" || msg.scope == "" || c.scope == msg.scope {
					targets = append(targets, c)
				}
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.data:
				default:
					h.logger.WithField("client_id", client.id).Warn("ws client too slow, dropping")
					h.remove(client)
				}
			}
			h.logger.WithFields(logrus.Fields{"scope": msg.scope, "clients": len(targets)}).Debug("ws broadcast")
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mutex.Unlock()
	h.logger.WithField("total_clients", total).Debug("ws disconnected")
}

// drainRegistrations closes clients that were queued but never served.
func (h *Hub) drainRegistrations() {
	h.regMu.Lock()
	defer h.regMu.Unlock()
	for {
		select {
		case c := <-h.register:
			if c != nil {
				close(c.send)
			}
		default:
			return
		}
	}
}

// Register adds client to the hub. Once the hub has stopped the client's
// send channel is closed straight away so its writer exits.
func (h *Hub) Register(client *Client) {
	if h == nil || client == nil {
		return
	}
	h.regMu.Lock()
	defer h.regMu.Unlock()
	select {
	case <-h.done:
		close(client.send)
		return
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister is a no-op after the hub has stopped; shutdown already closed
// every client.
func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues data for clients subscribed to scope. Messages are
// dropped when the queue is full.
func (h *Hub) Broadcast(scope string, data []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- outbound{scope: scope, data: data}:
	default:
		h.logger.WithField("reason", "buffer_full").Warn("ws broadcast dropped")
	}
}

// BroadcastJSON encodes v and queues it under the scope v reports, if any.
func (h *Hub) BroadcastJSON(v any) {
	if h == nil {
		return
	}
	scope, data, err := encode(v)
	if err != nil {
		h.logger.WithError(err).Error("ws encode event")
		return
	}
	h.Broadcast(scope, data)
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
