package resource

import (
	"context"
	"net/url"
	"sync"
)

// Hook is a live view of one collection endpoint. Data returns the last good
// value, or the empty default before the first successful load. A failed
// refresh keeps the previous data and records the error.
type Hook[T any] struct {
	cache *Cache
	path  string
	query url.Values
	empty T

	mu      sync.RWMutex
	data    T
	loaded  bool
	loading int
	err     error
	started uint64
	applied uint64
}

func newHook[T any](cache *Cache, path string, query url.Values, empty T) *Hook[T] {
	return &Hook[T]{cache: cache, path: path, query: query, empty: empty}
}

func (h *Hook[T]) Key() string {
	return Key(h.path, h.query)
}

func (h *Hook[T]) Data() T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return h.empty
	}
	return h.data
}

// Loading reports whether a fetch is in flight.
func (h *Hook[T]) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading > 0
}

func (h *Hook[T]) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Load serves from the shared cache when possible.
func (h *Hook[T]) Load(ctx context.Context) (T, error) {
	return h.refresh(ctx, false)
}

// Revalidate always goes to the network and refreshes the shared cache.
func (h *Hook[T]) Revalidate(ctx context.Context) (T, error) {
	return h.refresh(ctx, true)
}

// Mutate is the post-mutation refresh; it is Revalidate under the name
// callers use after a write.
func (h *Hook[T]) Mutate(ctx context.Context) (T, error) {
	return h.refresh(ctx, true)
}

// refresh fetches and records the result. A refresh that finishes after a
// later-started one is returned to its caller but not kept.
func (h *Hook[T]) refresh(ctx context.Context, force bool) (T, error) {
	h.mu.Lock()
	h.loading++
	h.started++
	seq := h.started
	h.mu.Unlock()

	v, err := fetch[T](ctx, h.cache, h.path, h.query, force)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading--
	if err != nil {
		if seq > h.applied {
			h.applied = seq
			h.err = err
		}
		if h.loaded {
			return h.data, err
		}
		return h.empty, err
	}
	if seq < h.applied {
		return v, nil
	}
	h.applied = seq
	h.err = nil
	h.data = v
	h.loaded = true
	return v, nil
}
