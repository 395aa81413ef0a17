package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/h5core/cache"
	"github.com/jonwraymond/h5core/observe"
)

// ValueCache fetches dataset values, at most one backend call per distinct
// request.
//
// Cancellation: CancelOngoing cancels every fetch in flight and Cancel a
// single one. A cancelled fetch fails with an error matching ErrCancelled
// and stays cached so callers can observe it; EvictCancelled drops those
// entries so the next Get retries.
type ValueCache struct {
	src    DataSource
	mw     *observe.Middleware
	source string
	sem    *semaphore.Weighted

	store *cache.Store[ValueRequest, Value]

	mu        sync.Mutex
	cancelled []cancelledFetch
}

// cancelledFetch is the token of a cancelled fetch, awaiting eviction.
type cancelledFetch struct {
	req ValueRequest
	id  uuid.UUID
}

func newValueCache(src DataSource, mw *observe.Middleware, source string, maxConcurrent int) *ValueCache {
	c := &ValueCache{src: src, mw: mw, source: source}
	if maxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	c.store = cache.New(c.fetch, cache.WithNamespace("values"))
	return c
}

// Get returns the value for req. ctx bounds this caller's wait only.
func (c *ValueCache) Get(ctx context.Context, req ValueRequest) (Value, error) {
	return c.store.Get(ctx, req)
}

// Prefetch starts fetching req without waiting.
func (c *ValueCache) Prefetch(req ValueRequest) {
	c.store.Prefetch(req)
}

// Has reports whether req has an entry, pending or completed.
func (c *ValueCache) Has(req ValueRequest) bool {
	return c.store.Has(req)
}

// Evict drops req so the next Get refetches it. A fetch in flight is not
// cancelled.
func (c *ValueCache) Evict(req ValueRequest) {
	c.store.Evict(req)
}

// Ongoing lists the fetches in flight with their reported progress.
func (c *ValueCache) Ongoing() []cache.Progress[ValueRequest] {
	return c.store.Ongoing()
}

// Cancel cancels the fetch in flight for req, if any. Other requests are
// unaffected. It reports whether a fetch was cancelled.
func (c *ValueCache) Cancel(req ValueRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.store.AbortPendingKey(req, ErrCancelled)
	if ok {
		c.cancelled = append(c.cancelled, cancelledFetch{req: p.Key, id: p.ID})
	}
	return ok
}

// CancelOngoing cancels every fetch in flight, including fetches started
// an instant earlier, and returns how many were cancelled. Fetches started
// afterwards are unaffected.
func (c *ValueCache) CancelOngoing() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	hit := c.store.AbortPending(ErrCancelled)
	for _, p := range hit {
		c.cancelled = append(c.cancelled, cancelledFetch{req: p.Key, id: p.ID})
	}
	return len(hit)
}

// Cancelled returns the number of cancelled requests awaiting
// EvictCancelled.
func (c *ValueCache) Cancelled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cancelled)
}

// EvictCancelled evicts the entries of cancelled requests and returns how
// many were evicted. Entries replaced by a later fetch are kept. A second
// call without cancellations in between is a no-op.
func (c *ValueCache) EvictCancelled() int {
	c.mu.Lock()
	tokens := c.cancelled
	c.cancelled = nil
	c.mu.Unlock()

	n := 0
	for _, tok := range tokens {
		if c.store.EvictIf(tok.req, func(r cache.Result[Value]) bool {
			return r.ID == tok.id && (r.Pending || errors.Is(r.Err, ErrCancelled))
		}) {
			n++
		}
	}
	return n
}

func (c *ValueCache) close() {
	c.CancelOngoing()
	c.store.Close()
}

func (c *ValueCache) fetch(ctx context.Context, req ValueRequest, progress cache.ProgressFunc) (Value, error) {
	if ctx.Err() != nil {
		return Value{}, c.cancelError(ctx, req, ctx.Err())
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return Value{}, c.cancelError(ctx, req, err)
		}
		defer c.sem.Release(1)
	}

	meta := observe.FetchMeta{Store: "values", Path: req.Path, Selection: req.Selection, Source: c.source}
	v, err := observe.Observe(withProgress(ctx, progress), c.mw, meta, func(ctx context.Context) (Value, error) {
		return c.src.FetchValue(ctx, req)
	})
	if err == nil && ctx.Err() != nil {
		// the source finished after being cancelled
		err = ctx.Err()
	}
	if err != nil {
		return Value{}, c.cancelError(ctx, req, err)
	}
	return v, nil
}

// cancelError replaces err with the cancellation cause of ctx when the
// fetch was cancelled, so callers see ErrCancelled rather than whatever the
// source made of it.
func (c *ValueCache) cancelError(ctx context.Context, req ValueRequest, err error) error {
	if ctx.Err() == nil {
		return err
	}
	cause := context.Cause(ctx)
	if cause == context.Canceled {
		cause = ErrCancelled
	}
	return fmt.Errorf("value %s [%s]: %w", req.Path, req.Selection, cause)
}
