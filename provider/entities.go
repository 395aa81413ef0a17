package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/h5core/cache"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/observe"
)

// EntityCache resolves entity paths, at most one backend call per path.
type EntityCache struct {
	src    DataSource
	mw     *observe.Middleware
	source string

	store *cache.Store[string, entity.Entity]

	mu       sync.Mutex
	children map[string]entity.Entity
}

func newEntityCache(src DataSource, mw *observe.Middleware, source string) *EntityCache {
	c := &EntityCache{
		src:      src,
		mw:       mw,
		source:   source,
		children: make(map[string]entity.Entity),
	}
	c.store = cache.New(c.fetch, cache.WithNamespace("entities"))
	return c
}

// Get returns the entity at path. Failures, ErrNotFound included, are
// cached until Evict.
func (c *EntityCache) Get(ctx context.Context, path string) (entity.Entity, error) {
	if err := entity.ValidatePath(path); err != nil {
		return nil, err
	}
	return c.store.Get(ctx, path)
}

// Prefetch starts resolving path without waiting.
func (c *EntityCache) Prefetch(path string) {
	if entity.ValidatePath(path) == nil {
		c.store.Prefetch(path)
	}
}

// Has reports whether path has an entry, pending or completed.
func (c *EntityCache) Has(path string) bool {
	return c.store.Has(path)
}

// Evict drops path, including any copy cached from its parent listing, so
// the next Get refetches it.
func (c *EntityCache) Evict(path string) {
	c.mu.Lock()
	delete(c.children, path)
	c.mu.Unlock()
	c.store.Evict(path)
}

// EvictErrors drops every cached failure and returns how many were dropped.
func (c *EntityCache) EvictErrors() int {
	return c.store.EvictErrors()
}

func (c *EntityCache) close() {
	c.store.Close()
}

func (c *EntityCache) fetch(ctx context.Context, path string, _ cache.ProgressFunc) (entity.Entity, error) {
	c.mu.Lock()
	child, ok := c.children[path]
	c.mu.Unlock()
	if ok {
		return child, nil
	}

	meta := observe.FetchMeta{Store: "entities", Path: path, Source: c.source}
	e, err := observe.Observe(ctx, c.mw, meta, func(ctx context.Context) (entity.Entity, error) {
		return c.src.FetchEntity(ctx, path)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("entity %s: %w", path, err)
		}
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("entity %s: %w", path, ErrNotFound)
	}

	if g, ok := e.(*entity.Group); ok {
		c.rememberChildren(g)
	}
	return e, nil
}

// rememberChildren keeps the non-group children of g. Child groups come
// without their own children and are always fetched.
func (c *EntityCache) rememberChildren(g *entity.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, child := range g.Children {
		if entity.IsGroup(child) {
			continue
		}
		c.children[child.Path()] = child
	}
}
