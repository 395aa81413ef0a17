package provider

import (
	"context"

	"github.com/jonwraymond/h5core/cache"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/observe"
)

// AttrCache fetches the attribute values of entities, one backend call per
// entity path.
type AttrCache struct {
	src    AttrSource
	mw     *observe.Middleware
	source string

	store *cache.Store[string, map[string]any]
}

func newAttrCache(src DataSource, mw *observe.Middleware, source string) *AttrCache {
	c := &AttrCache{mw: mw, source: source}
	c.src, _ = src.(AttrSource)
	c.store = cache.New(c.fetch, cache.WithNamespace("attrs"))
	return c
}

// Get returns every attribute value of e keyed by name. Entities without
// attributes never reach the source.
func (c *AttrCache) Get(ctx context.Context, e entity.Entity) (map[string]any, error) {
	if len(e.Attributes()) == 0 {
		return map[string]any{}, nil
	}
	if c.src == nil {
		return nil, ErrUnsupported
	}
	return c.store.Get(ctx, e.Path())
}

// GetSingle returns the value of the named attribute of e. It returns false
// when e has no such attribute.
func (c *AttrCache) GetSingle(ctx context.Context, e entity.Entity, name string) (any, bool, error) {
	if !entity.HasAttribute(e, name) {
		return nil, false, nil
	}
	values, err := c.Get(ctx, e)
	if err != nil {
		return nil, false, err
	}
	v, ok := values[name]
	return v, ok, nil
}

// Prefetch starts fetching the attribute values of e without waiting.
func (c *AttrCache) Prefetch(e entity.Entity) {
	if c.src != nil && len(e.Attributes()) > 0 {
		c.store.Prefetch(e.Path())
	}
}

// Evict drops the cached attribute values of the entity at path.
func (c *AttrCache) Evict(path string) {
	c.store.Evict(path)
}

func (c *AttrCache) close() {
	c.store.Close()
}

func (c *AttrCache) fetch(ctx context.Context, path string, _ cache.ProgressFunc) (map[string]any, error) {
	meta := observe.FetchMeta{Store: "attrs", Path: path, Source: c.source}
	return observe.Observe(ctx, c.mw, meta, func(ctx context.Context) (map[string]any, error) {
		return c.src.FetchAttrValues(ctx, path)
	})
}
