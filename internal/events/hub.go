package events

import (
	"sync"

	"sonagg/internal/models"
)

// Hub fans image updates out to subscribers. Slow subscribers drop events
// instead of blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan models.ImageUpdate]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.ImageUpdate]struct{})}
}

// Subscribe registers a new listener. The caller must Unsubscribe the
// returned channel when done.
func (h *Hub) Subscribe() chan models.ImageUpdate {
	ch := make(chan models.ImageUpdate, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan models.ImageUpdate) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(update models.ImageUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// SubscriberCount reports how many listeners are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
