package realtime

import (
	"sync"
)

// Hub fans envelopes out to every connected stream client in this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	onDrop  func(eventType string)
}

type client struct {
	ch chan Envelope
}

// NewHub builds an empty hub. onDrop, when set, is invoked whenever a slow
// client misses an envelope.
func NewHub(onDrop func(eventType string)) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		onDrop:  onDrop,
	}
}

// Subscribe registers a client with the given buffer size. The returned
// cancel func must be called when the client goes away.
func (h *Hub) Subscribe(buffer int) (<-chan Envelope, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	c := &client{ch: make(chan Envelope, buffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			close(c.ch)
		})
	}
	return c.ch, cancel
}

// Broadcast delivers env to every client without blocking. Clients whose
// buffer is full miss the envelope.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.ch <- env:
		default:
			if h.onDrop != nil {
				h.onDrop(env.Type)
			}
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
