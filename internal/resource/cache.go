// Package resource binds API collections to cached, revalidatable views and
// exposes the typed mutations the presentation layer calls.
package resource

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nape-ntsoane/trax/internal/apiclient"
)

// Cache holds the last decoded response per endpoint. Identical reads that
// overlap share a single request.
type Cache struct {
	client *apiclient.Client
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
	started map[string]uint64
	floor   map[string]uint64
}

// entry remembers which request produced the value so a slow, older
// response never replaces a newer one.
type entry struct {
	value any
	gen   uint64
}

func NewCache(client *apiclient.Client) *Cache {
	return &Cache{client: client, entries: make(map[string]entry), started: make(map[string]uint64), floor: make(map[string]uint64)}
}

// Key is the canonical cache key of path with query.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// begin numbers a new request for key.
func (c *Cache) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started[key]++
	return c.started[key]
}

// store keeps v unless a later request for key has already stored its
// result, or the key was invalidated after the request started.
func (c *Cache) store(key string, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.floor[key] {
		return
	}
	if cur, ok := c.entries[key]; ok && cur.gen > gen {
		return
	}
	c.entries[key] = entry{value: v, gen: gen}
}

// Invalidate drops every entry whose key starts with prefix.
// Requests for those keys that are still in flight are not joined by later
// reads and do not repopulate the cache.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	for key, gen := range c.started {
		if strings.HasPrefix(key, prefix) {
			c.floor[key] = gen
			c.group.Forget(key)
		}
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// fetch returns the cached value for path+query, or performs the request when
// nothing is cached or force is set. A forced fetch never joins a request that
// was already in flight, since that request may predate a write.
func fetch[T any](ctx context.Context, c *Cache, path string, query url.Values, force bool) (T, error) {
	key := Key(path, query)
	if !force {
		if v, ok := c.lookup(key); ok {
			return v.(T), nil
		}
	} else {
		c.group.Forget(key)
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if !force {
			if v, ok := c.lookup(key); ok {
				return v, nil
			}
		}
		gen := c.begin(key)
		var out T
		if err := c.client.Do(ctx, apiclient.Request{Path: path, Query: query}, &out); err != nil {
			return nil, err
		}
		c.store(key, out, gen)
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
