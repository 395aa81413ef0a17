package dimmap

import (
	"fmt"
	"sync"
)

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithLockedDims excludes the last n dimensions from the mapping; they are
// always kept whole (e.g. the channel dimension of an RGB image).
func WithLockedDims(n int) MapperOption {
	return func(m *Mapper) {
		m.locked = n
	}
}

// Mapper is the dimension mapping state of one visualization.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Invariant: after every successful operation, exactly one dimension per
//     required role holds that role and every other mapped dimension holds an
//     index in [0, size).
//   - Errors: rejected operations leave the state untouched.
type Mapper struct {
	mu        sync.RWMutex
	shape     []int
	axesCount int
	locked    int
	mapping   Mapping
}

// NewMapper creates a mapper in its initial state for shape and axesCount.
func NewMapper(shape []int, axesCount int, opts ...MapperOption) (*Mapper, error) {
	m := &Mapper{}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.reset(shape, axesCount); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mapper) reset(shape []int, axesCount int) error {
	if m.locked < 0 || m.locked > len(shape) {
		return fmt.Errorf("%w: cannot lock %d of %d dims", ErrInvalid, m.locked, len(shape))
	}
	mappable := shape[:len(shape)-m.locked]

	mapping, err := Init(mappable, axesCount)
	if err != nil {
		return err
	}

	m.shape = append([]int(nil), shape...)
	m.axesCount = axesCount
	m.mapping = mapping
	return nil
}

// Reset rebuilds the initial state when the shape or the axes count
// changed. It returns false, keeping the current mapping, when both are
// unchanged.
func (m *Mapper) Reset(shape []int, axesCount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if axesCount == m.axesCount && sameDims(shape, m.shape) {
		return false, nil
	}
	if err := m.reset(shape, axesCount); err != nil {
		return false, err
	}
	return true, nil
}

// Shape returns a copy of the shape the mapping was built from.
func (m *Mapper) Shape() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.shape...)
}

// AxesCount returns the number of required axes.
func (m *Mapper) AxesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.axesCount
}

// Mapping returns a copy of the current mapping.
func (m *Mapper) Mapping() Mapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mapping.Clone()
}

// Selection returns the selection of the current mapping.
func (m *Mapper) Selection() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mapping.Selection()
}

// AssignRole moves role a onto dimension target.
//
// If target held another role, the two roles swap. If target held a slice
// index, the dimension that gave up the role is sliced at index 0 rather
// than inheriting the old index.
func (m *Mapper) AssignRole(a Axis, target int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !a.Valid() {
		return fmt.Errorf("%w: unknown axis %q", ErrInvalid, a)
	}
	if target < 0 || target >= len(m.mapping) {
		return fmt.Errorf("%w: dim %d out of range [0, %d)", ErrInvalid, target, len(m.mapping))
	}

	current := m.mapping.IndexOf(a)
	if current < 0 {
		return fmt.Errorf("%w: axis %s is not mapped", ErrInvalid, a)
	}
	if current == target {
		return nil
	}

	next := m.mapping.Clone()
	if prev := m.mapping[target]; prev.IsAxis() {
		next[current] = prev
	} else {
		next[current] = SliceDim(0)
	}
	next[target] = AxisDim(a)

	m.mapping = next
	return nil
}

// SetSliceIndex changes the slice index of dimension dim. The dimension must
// hold a slice index and index must lie in [0, size).
func (m *Mapper) SetSliceIndex(dim, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dim < 0 || dim >= len(m.mapping) {
		return fmt.Errorf("%w: dim %d out of range [0, %d)", ErrInvalid, dim, len(m.mapping))
	}
	if m.mapping[dim].IsAxis() {
		return fmt.Errorf("%w: dim %d holds axis %s", ErrInvalid, dim, m.mapping[dim].Axis)
	}
	if index < 0 || index >= m.shape[dim] {
		return fmt.Errorf("%w: index %d out of range [0, %d) for dim %d", ErrInvalid, index, m.shape[dim], dim)
	}

	next := m.mapping.Clone()
	next[dim] = SliceDim(index)
	m.mapping = next
	return nil
}

// SetMapping replaces the mapping after validating it.
func (m *Mapper) SetMapping(next Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(next) != len(m.mapping) {
		return fmt.Errorf("%w: mapping has %d dims, want %d", ErrInvalid, len(next), len(m.mapping))
	}
	if err := next.Validate(m.shape, m.axesCount); err != nil {
		return err
	}
	m.mapping = next.Clone()
	return nil
}

// ApplyDefaultSlice seeds slice indices from a NeXus default_slice
// attribute: one entry per dimension, an integer for a fixed index or nil
// for a free dimension. Entries that hit a role or fall out of range are
// ignored.
func (m *Mapper) ApplyDefaultSlice(defaults []*int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.mapping.Clone()
	for i, d := range defaults {
		if i >= len(next) || d == nil || next[i].IsAxis() {
			continue
		}
		if *d >= 0 && *d < m.shape[i] {
			next[i] = SliceDim(*d)
		}
	}
	m.mapping = next
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
