package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/h5core/dimmap"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/ndview"
	"github.com/jonwraymond/h5core/observe"
)

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	observer      observe.Observer
	middleware    *observe.Middleware
	logger        observe.Logger
	source        string
	maxConcurrent int
	walkLimit     int
	prefetchRoot  bool
}

// WithObserver instruments every fetch with traces, metrics and logs from
// obs.
func WithObserver(obs observe.Observer) Option {
	return func(o *sessionOptions) {
		o.observer = obs
	}
}

// WithMiddleware instruments every fetch with mw. It takes precedence over
// WithObserver.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *sessionOptions) {
		o.middleware = mw
	}
}

// WithLogger sets the logger for session events.
// Default: the observer's logger, or none.
func WithLogger(l observe.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithSourceName labels telemetry with the backend name.
func WithSourceName(name string) Option {
	return func(o *sessionOptions) {
		o.source = name
	}
}

// WithMaxConcurrentFetches bounds the value fetches running against the
// source at once. Zero means unbounded.
// Default: 0
func WithMaxConcurrentFetches(n int) Option {
	return func(o *sessionOptions) {
		o.maxConcurrent = n
	}
}

// WithWalkConcurrency bounds the group fetches Tree runs in parallel per
// level.
// Default: 8
func WithWalkConcurrency(n int) Option {
	return func(o *sessionOptions) {
		if n > 0 {
			o.walkLimit = n
		}
	}
}

// WithoutRootPrefetch disables fetching "/" when the session opens.
func WithoutRootPrefetch() Option {
	return func(o *sessionOptions) {
		o.prefetchRoot = false
	}
}

// Session holds the caches of one open file. It replaces any process-wide
// cache state: create one per file, Close it when done.
type Session struct {
	src    DataSource
	logger observe.Logger

	entities *EntityCache
	values   *ValueCache
	attrs    *AttrCache

	walkLimit int
}

// NewSession creates the caches for src and starts fetching the root group.
func NewSession(src DataSource, opts ...Option) (*Session, error) {
	if src == nil {
		return nil, errors.New("provider: nil data source")
	}

	o := sessionOptions{walkLimit: 8, prefetchRoot: true}
	for _, opt := range opts {
		opt(&o)
	}

	mw := o.middleware
	if mw == nil && o.observer != nil {
		var err error
		if mw, err = observe.MiddlewareFromObserver(o.observer); err != nil {
			return nil, fmt.Errorf("provider: instrumenting session: %w", err)
		}
	}
	logger := o.logger
	if logger == nil && o.observer != nil {
		logger = o.observer.Logger()
	}

	s := &Session{
		src:       src,
		logger:    logger,
		entities:  newEntityCache(src, mw, o.source),
		values:    newValueCache(src, mw, o.source, o.maxConcurrent),
		attrs:     newAttrCache(src, mw, o.source),
		walkLimit: o.walkLimit,
	}
	if o.prefetchRoot {
		s.entities.Prefetch(entity.RootPath)
	}
	return s, nil
}

// Entities returns the entity cache.
func (s *Session) Entities() *EntityCache { return s.entities }

// Values returns the value cache.
func (s *Session) Values() *ValueCache { return s.values }

// Attrs returns the attribute cache.
func (s *Session) Attrs() *AttrCache { return s.attrs }

// Close cancels every fetch, drops the caches and closes the source when it
// implements Closer. Gets after Close fail with cache.ErrClosed.
func (s *Session) Close() error {
	cancelled := s.values.CancelOngoing()
	s.values.close()
	s.entities.close()
	s.attrs.close()

	if s.logger != nil {
		s.logger.Debug(context.Background(), "session closed",
			observe.Field{Key: "cancelled", Value: cancelled})
	}

	if c, ok := s.src.(Closer); ok {
		return c.Close()
	}
	return nil
}

// PrefetchChildren starts fetching the child groups of the group at path.
// Non-group children are already cached with their parent.
func (s *Session) PrefetchChildren(ctx context.Context, path string) error {
	e, err := s.entities.Get(ctx, path)
	if err != nil {
		return err
	}
	g, err := entity.AsGroupWithChildren(e)
	if err != nil {
		return err
	}
	for _, child := range g.Children {
		if entity.IsGroup(child) {
			s.entities.Prefetch(child.Path())
		}
	}
	return nil
}

// Node is an entity with its resolved descendants.
type Node struct {
	Entity   entity.Entity
	Children []*Node
}

// Tree resolves the hierarchy below path down to depth levels; a negative
// depth walks everything. Sibling groups are fetched concurrently. The
// first failure aborts the walk.
func (s *Session) Tree(ctx context.Context, path string, depth int) (*Node, error) {
	e, err := s.entities.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	node := &Node{Entity: e}
	g, ok := e.(*entity.Group)
	if !ok || depth == 0 {
		return node, nil
	}

	node.Children = make([]*Node, len(g.Children))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.walkLimit)
	for i, child := range g.Children {
		if !entity.IsGroup(child) {
			node.Children[i] = &Node{Entity: child}
			continue
		}
		eg.Go(func() error {
			n, err := s.Tree(ctx, child.Path(), depth-1)
			node.Children[i] = n
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return node, nil
}

// Slice reads the dataset at path through the value cache and projects it
// along mapping: sliced dimensions are requested from the source, and the
// result is laid out rows along y, columns along x.
func (s *Session) Slice(ctx context.Context, path string, mapping dimmap.Mapping) (ndview.Array[float64], error) {
	e, err := s.entities.Get(ctx, path)
	if err != nil {
		return ndview.Array[float64]{}, err
	}
	ds, err := entity.AsDataset(e)
	if err != nil {
		return ndview.Array[float64]{}, fmt.Errorf("%s: %w", path, ErrNotDataset)
	}
	if ds.Shape.IsNull() {
		return ndview.Array[float64]{}, fmt.Errorf("%s: %w", path, entity.ErrNotArrayShape)
	}
	if len(mapping) > ds.Shape.Rank() {
		return ndview.Array[float64]{}, fmt.Errorf("%w: mapping %v for rank %d", dimmap.ErrInvalid, mapping, ds.Shape.Rank())
	}

	selection, _ := mapping.Selection()
	v, err := s.values.Get(ctx, ValueRequest{Path: path, Selection: selection})
	if err != nil {
		return ndview.Array[float64]{}, err
	}

	data, ok := v.Float64s()
	if !ok {
		return ndview.Array[float64]{}, fmt.Errorf("%s: %w", path, ErrNotNumeric)
	}

	shape := v.Shape
	if shape == nil {
		if shape, err = SelectedShape(ds.Shape, selection); err != nil {
			return ndview.Array[float64]{}, err
		}
	}

	_, sub := dimmap.SlicedDimsAndMapping(ds.Shape, mapping)
	return ndview.Project(data, shape, sub)
}
