package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	keyer     Keyer
	namespace string
}

// WithKeyer sets the keyer used to canonicalize keys.
// Default: DefaultKeyer.
func WithKeyer(k Keyer) Option {
	return func(o *options) {
		if k != nil {
			o.keyer = k
		}
	}
}

// WithNamespace sets the namespace prefixed to every key.
// Default: "store".
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// Store is an asynchronous keyed cache with at most one fetch in flight per
// key.
type Store[K, V any] struct {
	fetch     FetchFunc[K, V]
	keyer     Keyer
	namespace string

	ctx   context.Context
	close context.CancelCauseFunc

	mu      sync.Mutex
	entries map[string]*entry[K, V]
}

type entry[K, V any] struct {
	key    K
	id     uuid.UUID
	done   chan struct{}
	cancel context.CancelCauseFunc

	// Written once by the fetching goroutine before done is closed.
	value V
	err   error

	// Guarded by Store.mu.
	ratio      float64
	ratioKnown bool
}

func (e *entry[K, V]) completed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// progress must be called with Store.mu held.
func (e *entry[K, V]) progress() Progress[K] {
	return Progress[K]{Key: e.key, ID: e.id, Ratio: e.ratio, Known: e.ratioKnown}
}

// New creates a store that resolves misses with fetch.
func New[K, V any](fetch FetchFunc[K, V], opts ...Option) *Store[K, V] {
	o := options{keyer: NewDefaultKeyer(), namespace: "store"}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &Store[K, V]{
		fetch:     fetch,
		keyer:     o.keyer,
		namespace: o.namespace,
		ctx:       ctx,
		close:     cancel,
		entries:   make(map[string]*entry[K, V]),
	}
}

// Key returns the canonical key used for input.
func (s *Store[K, V]) Key(input K) (string, error) {
	k, err := s.keyer.Key(s.namespace, input)
	if err != nil {
		return "", err
	}
	if k == "" {
		return "", ErrInvalidKey
	}
	return k, nil
}

// Get returns the value for key, fetching it if needed.
//
// Cancelling ctx stops the wait of this caller only; the fetch keeps running
// for the other waiters and its result is cached.
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V

	e, err := s.load(key)
	if err != nil {
		return zero, err
	}

	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Prefetch starts fetching key without waiting for the result.
func (s *Store[K, V]) Prefetch(key K) {
	_, _ = s.load(key)
}

// Has reports whether key has an entry, pending or completed.
func (s *Store[K, V]) Has(key K) bool {
	k, err := s.Key(key)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[k]
	return ok
}

// Preset stores value for key without fetching, replacing any entry.
func (s *Store[K, V]) Preset(key K, value V) error {
	k, err := s.Key(key)
	if err != nil {
		return err
	}

	e := &entry[K, V]{
		key:    key,
		id:     uuid.New(),
		done:   make(chan struct{}),
		cancel: func(error) {},
		value:  value,
	}
	close(e.done)

	s.mu.Lock()
	s.entries[k] = e
	s.mu.Unlock()
	return nil
}

// Evict removes the entry for key so the next Get fetches again.
// Idempotent - no error on miss. A pending fetch is not cancelled; its
// result is dropped.
func (s *Store[K, V]) Evict(key K) {
	k, err := s.Key(key)
	if err != nil {
		return
	}

	s.mu.Lock()
	delete(s.entries, k)
	s.mu.Unlock()
}

// Result is a snapshot of an entry.
type Result[V any] struct {
	// ID identifies the fetch behind the entry. A refetch after eviction
	// gets a new ID.
	ID      uuid.UUID
	Value   V
	Err     error
	Pending bool // Value and Err are unset while the fetch is in flight
}

func (e *entry[K, V]) result() Result[V] {
	if !e.completed() {
		return Result[V]{ID: e.id, Pending: true}
	}
	return Result[V]{ID: e.id, Value: e.value, Err: e.err}
}

// Lookup returns the entry for key without starting a fetch. It returns
// false on miss.
func (s *Store[K, V]) Lookup(key K) (Result[V], bool) {
	k, err := s.Key(key)
	if err != nil {
		return Result[V]{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return Result[V]{}, false
	}
	return e.result(), true
}

// EvictIf removes the entry for key when pred accepts its current state,
// atomically with respect to other store operations. It reports whether an
// entry was removed.
func (s *Store[K, V]) EvictIf(key K, pred func(Result[V]) bool) bool {
	k, err := s.Key(key)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok || !pred(e.result()) {
		return false
	}
	delete(s.entries, k)
	return true
}

// EvictErrors removes every completed entry that holds a failure.
func (s *Store[K, V]) EvictErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if e.completed() && e.err != nil {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Abort cancels the pending fetch for key with the given cause, and evicts
// the entry when evict is true. A nil cause defaults to ErrAborted.
func (s *Store[K, V]) Abort(key K, cause error, evict bool) {
	k, err := s.Key(key)
	if err != nil {
		return
	}
	if cause == nil {
		cause = ErrAborted
	}

	s.mu.Lock()
	e, ok := s.entries[k]
	if ok && evict {
		delete(s.entries, k)
	}
	s.mu.Unlock()

	if ok {
		e.cancel(cause)
	}
}

// AbortAll cancels every pending fetch, optionally evicting all entries.
func (s *Store[K, V]) AbortAll(cause error, evict bool) {
	if cause == nil {
		cause = ErrAborted
	}

	s.mu.Lock()
	pending := make([]*entry[K, V], 0, len(s.entries))
	for k, e := range s.entries {
		pending = append(pending, e)
		if evict {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()

	for _, e := range pending {
		e.cancel(cause)
	}
}

// AbortPending cancels every fetch still in flight with cause and returns
// them. Entries are kept, so waiters and later Gets observe the failure.
// Fetches whose goroutine has not started yet are included.
func (s *Store[K, V]) AbortPending(cause error) []Progress[K] {
	return s.abortPending(cause, func(string) bool { return true })
}

// AbortPendingKey is AbortPending restricted to key. It reports false when
// key has no fetch in flight.
func (s *Store[K, V]) AbortPendingKey(key K, cause error) (Progress[K], bool) {
	k, err := s.Key(key)
	if err != nil {
		return Progress[K]{}, false
	}
	hit := s.abortPending(cause, func(other string) bool { return other == k })
	if len(hit) == 0 {
		return Progress[K]{}, false
	}
	return hit[0], true
}

func (s *Store[K, V]) abortPending(cause error, match func(k string) bool) []Progress[K] {
	if cause == nil {
		cause = ErrAborted
	}

	s.mu.Lock()
	var (
		pending []*entry[K, V]
		out     []Progress[K]
	)
	for k, e := range s.entries {
		if e.completed() || !match(k) {
			continue
		}
		pending = append(pending, e)
		out = append(out, e.progress())
	}
	s.mu.Unlock()

	for _, e := range pending {
		e.cancel(cause)
	}
	return out
}

// Len returns the number of entries, pending or completed.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Ongoing returns the fetches still in flight.
func (s *Store[K, V]) Ongoing() []Progress[K] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Progress[K]
	for _, e := range s.entries {
		if e.completed() {
			continue
		}
		out = append(out, e.progress())
	}
	return out
}

// Close aborts every pending fetch and drops all entries. Gets issued after
// Close fail with ErrClosed.
func (s *Store[K, V]) Close() {
	s.close(ErrClosed)
	s.AbortAll(ErrClosed, true)
}

// load returns the entry for key, starting its fetch when missing.
func (s *Store[K, V]) load(key K) (*entry[K, V], error) {
	k, err := s.Key(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[k]; ok {
		return e, nil
	}
	if s.ctx.Err() != nil {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithCancelCause(s.ctx)
	e := &entry[K, V]{
		key:    key,
		id:     uuid.New(),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.entries[k] = e

	go s.run(ctx, e)
	return e, nil
}

func (s *Store[K, V]) run(ctx context.Context, e *entry[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			e.err = fmt.Errorf("%w: %v", ErrFetchPanic, r)
		}
		close(e.done)
		e.cancel(nil)
	}()

	progress := func(ratio float64) {
		s.mu.Lock()
		e.ratio = ratio
		e.ratioKnown = true
		s.mu.Unlock()
	}

	e.value, e.err = s.fetch(ctx, e.key, progress)
}
