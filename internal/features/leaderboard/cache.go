package leaderboard

import (
	"strconv"
	"strings"
	"sync"

	"go-gamifier/internal/config"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds computed leaderboard views keyed by organization and view. A nil
// *Cache, or one built with size 0, caches nothing.
//
// Every key carries the organization's generation, which Invalidate bumps. A view
// computed before an invalidation is stored under the old generation and never read.
type Cache struct {
	lru *expirable.LRU[string, any]

	mu   sync.Mutex
	gens map[string]uint64
}

func NewCache(cfg *config.Config) *Cache {
	if cfg.LeaderboardCacheSize <= 0 {
		return &Cache{}
	}
	return &Cache{
		lru:  expirable.NewLRU[string, any](cfg.LeaderboardCacheSize, nil, cfg.LeaderboardCacheTTL),
		gens: make(map[string]uint64),
	}
}

// Key builds the cache key of a view. Take it before reading the data the view is
// computed from.
func (c *Cache) Key(organizationID string, parts ...string) string {
	return organizationID + "|" + strconv.FormatUint(c.generation(organizationID), 10) + "|" + strings.Join(parts, "|")
}

func (c *Cache) generation(organizationID string) uint64 {
	if c == nil || c.lru == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[organizationID]
}

func (c *Cache) Get(key string) (any, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *Cache) Add(key string, value any) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Invalidate drops every view of the organization.
func (c *Cache) Invalidate(organizationID string) {
	if c == nil || c.lru == nil {
		return
	}
	c.mu.Lock()
	c.gens[organizationID]++
	c.mu.Unlock()

	prefix := organizationID + "|"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

func (c *Cache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
