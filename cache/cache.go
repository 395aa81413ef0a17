package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrAborted    = errors.New("cache: fetch aborted")
	ErrClosed     = errors.New("cache: store is closed")
	ErrFetchPanic = errors.New("cache: fetch panicked")
)

// ProgressFunc reports the completion ratio, in [0, 1], of a fetch.
type ProgressFunc func(ratio float64)

// FetchFunc retrieves the value for a key.
//
// Contract:
//   - Context: ctx is cancelled when the entry is aborted or the store is
//     closed; implementations must return promptly once ctx is done.
//   - Progress: reporting progress is optional.
type FetchFunc[K, V any] func(ctx context.Context, key K, progress ProgressFunc) (V, error)

// Progress describes an ongoing fetch.
type Progress[K any] struct {
	Key K
	ID  uuid.UUID
	// Ratio is the last reported completion ratio; valid only when Known.
	Ratio float64
	Known bool
}

// Fetcher is the read side of a store, as consumed by higher layers.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: ctx bounds the wait of the caller only, never the shared fetch.
// - Errors: fetch failures are returned verbatim and cached until evicted.
type Fetcher[K, V any] interface {
	Get(ctx context.Context, key K) (V, error)
	Prefetch(key K)
	Evict(key K)
}

// Ensure Store implements Fetcher
var _ Fetcher[string, int] = (*Store[string, int])(nil)
