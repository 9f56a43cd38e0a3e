package storetest

import (
	"sync"

	"go-gamifier/internal/common/models"
)

// Publisher records every published batch.
type Publisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *Publisher) Publish(events []models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *Publisher) Events() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Event(nil), p.events...)
}

// Invalidations records cache invalidations by organization id.
type Invalidations struct {
	mu   sync.Mutex
	orgs []string
}

func (c *Invalidations) Invalidate(organizationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orgs = append(c.orgs, organizationID)
}

func (c *Invalidations) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.orgs)
}
