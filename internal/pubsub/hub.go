package pubsub

import (
	"sync"

	"microblog/internal/models"
)

// subscriberBuffer bounds how far a slow consumer may lag before events
// are dropped for it.
const subscriberBuffer = 16

// Subscriber receives newly created posts on C until Unsubscribe.
type Subscriber struct {
	C chan models.Post

	authenticated bool
}

// Hub fans newly created posts out to websocket subscribers. Connections
// may attach unauthenticated, but delivery is filtered: only subscribers
// whose handshake carried a verified identity receive events.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber. authenticated records whether the
// connection's handshake passed token verification.
func (h *Hub) Subscribe(authenticated bool) *Subscriber {
	s := &Subscriber{
		C:             make(chan models.Post, subscriberBuffer),
		authenticated: authenticated,
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes the subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Publish delivers p to every authenticated subscriber. Sends never
// block: a subscriber with a full buffer misses the event.
func (h *Hub) Publish(p models.Post) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.authenticated {
			continue
		}
		select {
		case s.C <- p:
		default:
		}
	}
}
