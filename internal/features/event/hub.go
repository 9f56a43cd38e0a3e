package event

import (
	"sync"

	"go-gamifier/internal/common/models"
)

const subscriberBuffer = 64

// Hub fans committed events out to live subscribers of an organization.
// Slow subscribers lose events rather than stall the writer.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan models.Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.Event]struct{})}
}

// Subscribe returns a channel of events for organizationID and a cancel func that closes it.
func (h *Hub) Subscribe(organizationID string) (<-chan models.Event, func()) {
	ch := make(chan models.Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[organizationID] == nil {
		h.subs[organizationID] = make(map[chan models.Event]struct{})
	}
	h.subs[organizationID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[organizationID][ch]; ok {
				delete(h.subs[organizationID], ch)
				close(ch)
			}
			if len(h.subs[organizationID]) == 0 {
				delete(h.subs, organizationID)
			}
		})
	}
}

func (h *Hub) Publish(events []models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ev := range events {
		for ch := range h.subs[ev.OrganizationID.Hex()] {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for org, chans := range h.subs {
		for ch := range chans {
			close(ch)
		}
		delete(h.subs, org)
	}
}
