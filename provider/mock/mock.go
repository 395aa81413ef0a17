// Package mock is an in-memory provider.DataSource for tests, demos and
// offline use of the command line tool.
package mock

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/h5core/dimmap"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/ndview"
	"github.com/jonwraymond/h5core/provider"
)

// Option configures a Source.
type Option func(*Source)

// WithDelay makes every value fetch take d, reporting progress halfway.
// Default: 0
func WithDelay(d time.Duration) Option {
	return func(s *Source) {
		s.delay = d
	}
}

// WithGate makes value fetches wait until gate is closed.
func WithGate(gate <-chan struct{}) Option {
	return func(s *Source) {
		s.gate = gate
	}
}

// Source serves a hierarchy built with AddGroup, AddDataset and AddLink.
//
// Contract:
// - Concurrency: safe for concurrent use, including while adding nodes.
// - Context: value fetches stop with provider.ErrCancelled once ctx is done.
type Source struct {
	delay time.Duration
	gate  <-chan struct{}

	mu    sync.RWMutex
	nodes map[string]*node

	entityCalls atomic.Int64
	valueCalls  atomic.Int64
	attrCalls   atomic.Int64
}

type node struct {
	entity   entity.Entity
	children []string
	data     any
	attrs    map[string]any
}

// New creates a source holding only the root group.
func New(opts ...Option) *Source {
	s := &Source{nodes: make(map[string]*node)}
	for _, opt := range opts {
		opt(s)
	}
	s.nodes[entity.RootPath] = &node{
		entity: &entity.Group{Base: entity.Base{EntityName: "", EntityPath: entity.RootPath}},
	}
	return s
}

// Attrs are attribute values keyed by name.
type Attrs map[string]any

// AddGroup adds a group at path. The parent must exist.
func (s *Source) AddGroup(path string, attrs Attrs) error {
	g := &entity.Group{Base: s.base(path, attrs)}
	return s.add(path, &node{entity: g, attrs: attrs})
}

// AddDataset adds a dataset holding data, a flat row-major slice matching
// shape (or a scalar for an empty shape).
func (s *Source) AddDataset(path string, shape entity.Shape, dtype entity.DType, data any, attrs Attrs) error {
	if flat, ok := ndview.ToFloat64s(data); ok && len(flat) != shape.Size() {
		return fmt.Errorf("mock: %s: %d values for shape %v", path, len(flat), shape)
	}
	ds := &entity.Dataset{Base: s.base(path, attrs), Shape: shape, Type: dtype}
	return s.add(path, &node{entity: ds, data: data, attrs: attrs})
}

// AddLink adds an unresolved soft or external link.
func (s *Source) AddLink(path string, link entity.Link) error {
	u := &entity.Unresolved{Base: s.base(path, nil)}
	u.LinkInfo = &link
	return s.add(path, &node{entity: u})
}

func (s *Source) base(path string, attrs Attrs) entity.Base {
	b := entity.Base{EntityName: entity.NameFromPath(path), EntityPath: path}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.Attrs = append(b.Attrs, describeAttr(name, attrs[name]))
	}
	return b
}

func (s *Source) add(path string, n *node) error {
	if err := entity.ValidatePath(path); err != nil {
		return fmt.Errorf("mock: %q: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[path]; ok {
		return fmt.Errorf("mock: %s already exists", path)
	}
	parent, ok := s.nodes[entity.ParentPath(path)]
	if !ok || !entity.IsGroup(parent.entity) {
		return fmt.Errorf("mock: %s: parent is not a group", path)
	}
	parent.children = append(parent.children, path)
	s.nodes[path] = n
	return nil
}

// FetchEntity implements provider.DataSource. Groups come with their
// children; child groups are listed without their own children.
func (s *Source) FetchEntity(ctx context.Context, path string) (entity.Entity, error) {
	s.entityCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, provider.ErrCancelled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, path)
	}

	g, ok := n.entity.(*entity.Group)
	if !ok {
		return n.entity, nil
	}

	out := &entity.Group{Base: g.Base, Children: make([]entity.Entity, 0, len(n.children))}
	for _, cp := range n.children {
		child := s.nodes[cp].entity
		if cg, ok := child.(*entity.Group); ok {
			child = &entity.Group{Base: cg.Base}
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// FetchValue implements provider.DataSource, applying the selection in
// memory.
func (s *Source) FetchValue(ctx context.Context, req provider.ValueRequest) (provider.Value, error) {
	s.valueCalls.Add(1)

	if err := s.wait(ctx); err != nil {
		return provider.Value{}, err
	}

	s.mu.RLock()
	n, ok := s.nodes[req.Path]
	s.mu.RUnlock()
	if !ok {
		return provider.Value{}, fmt.Errorf("%w: %s", provider.ErrNotFound, req.Path)
	}
	ds, ok := n.entity.(*entity.Dataset)
	if !ok {
		return provider.Value{}, fmt.Errorf("%s: %w", req.Path, provider.ErrNotDataset)
	}

	if req.Selection == "" {
		return provider.Value{Data: n.data, Shape: ds.Shape.Clone()}, nil
	}

	flat, ok := ndview.ToFloat64s(n.data)
	if !ok {
		return provider.Value{}, fmt.Errorf("%s: %w", req.Path, provider.ErrNotNumeric)
	}
	picks, err := dimmap.ParseSelection(req.Selection, ds.Shape.Rank())
	if err != nil {
		return provider.Value{}, err
	}
	arr, err := ndview.New(flat, ds.Shape)
	if err != nil {
		return provider.Value{}, err
	}
	view, err := arr.Pick(picks...)
	if err != nil {
		return provider.Value{}, err
	}
	out := view.Materialize()
	return provider.Value{Data: out.Data, Shape: out.Shape}, nil
}

func (s *Source) wait(ctx context.Context) error {
	if s.delay > 0 {
		half := time.NewTimer(s.delay / 2)
		defer half.Stop()
		select {
		case <-half.C:
			provider.ReportProgress(ctx, 0.5)
		case <-ctx.Done():
			return provider.ErrCancelled
		}
		rest := time.NewTimer(s.delay - s.delay/2)
		defer rest.Stop()
		select {
		case <-rest.C:
		case <-ctx.Done():
			return provider.ErrCancelled
		}
	}

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return provider.ErrCancelled
		}
	}
	return ctx.Err()
}

// FetchAttrValues implements provider.AttrSource.
func (s *Source) FetchAttrValues(ctx context.Context, path string) (map[string]any, error) {
	s.attrCalls.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, path)
	}
	return maps.Clone(map[string]any(n.attrs)), nil
}

// EntityCalls returns how many times FetchEntity ran.
func (s *Source) EntityCalls() int64 { return s.entityCalls.Load() }

// ValueCalls returns how many times FetchValue ran.
func (s *Source) ValueCalls() int64 { return s.valueCalls.Load() }

// AttrCalls returns how many times FetchAttrValues ran.
func (s *Source) AttrCalls() int64 { return s.attrCalls.Load() }

// Ensure Source implements the provider interfaces
var (
	_ provider.DataSource = (*Source)(nil)
	_ provider.AttrSource = (*Source)(nil)
)
