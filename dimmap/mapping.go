package dimmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid is returned for out-of-range or inconsistent mapping requests.
var ErrInvalid = errors.New("dimmap: invalid request")

// MaxAxes is the largest number of axes a visualization may require.
const MaxAxes = 2

// Axis is a display role.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Valid reports whether a is a known role.
func (a Axis) Valid() bool { return a == AxisX || a == AxisY }

// CanonicalAxes returns the roles of a visualization requiring count axes,
// in the order they are laid on the trailing dimensions of a shape.
func CanonicalAxes(count int) []Axis {
	switch count {
	case 1:
		return []Axis{AxisX}
	case 2:
		return []Axis{AxisY, AxisX}
	default:
		return nil
	}
}

// Dim is one entry of a Mapping: a role when Axis is set, a slice index
// otherwise.
type Dim struct {
	Axis  Axis
	Index int
}

// AxisDim returns an entry holding role a.
func AxisDim(a Axis) Dim { return Dim{Axis: a} }

// SliceDim returns an entry holding slice index i.
func SliceDim(i int) Dim { return Dim{Index: i} }

// IsAxis reports whether the entry holds a role.
func (d Dim) IsAxis() bool { return d.Axis != "" }

// String returns the role name or the slice index.
func (d Dim) String() string {
	if d.IsAxis() {
		return string(d.Axis)
	}
	return strconv.Itoa(d.Index)
}

// MarshalJSON encodes a role as a string and a slice index as a number.
func (d Dim) MarshalJSON() ([]byte, error) {
	if d.IsAxis() {
		return json.Marshal(string(d.Axis))
	}
	return json.Marshal(d.Index)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (d *Dim) UnmarshalJSON(b []byte) error {
	var idx int
	if err := json.Unmarshal(b, &idx); err == nil {
		*d = SliceDim(idx)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: dim %s", ErrInvalid, b)
	}
	a := Axis(s)
	if !a.Valid() {
		return fmt.Errorf("%w: unknown axis %q", ErrInvalid, s)
	}
	*d = AxisDim(a)
	return nil
}

// Mapping assigns a role or a slice index to each mappable dimension.
type Mapping []Dim

// Init returns the initial mapping for a shape and a required number of
// axes: the trailing dimensions receive the canonical roles and every other
// dimension is sliced at index 0. The axes count is capped to the rank.
// A sliced dimension of size zero has no index to start at and is rejected.
func Init(shape []int, axesCount int) (Mapping, error) {
	if axesCount < 0 || axesCount > MaxAxes {
		return nil, fmt.Errorf("%w: unsupported number of axes %d", ErrInvalid, axesCount)
	}

	rank := len(shape)
	if axesCount > rank {
		axesCount = rank
	}

	m := make(Mapping, rank)
	for i := range m {
		m[i] = SliceDim(0)
	}
	for i, a := range CanonicalAxes(axesCount) {
		m[rank-axesCount+i] = AxisDim(a)
	}
	for i, d := range m {
		if !d.IsAxis() && shape[i] <= 0 {
			return nil, fmt.Errorf("%w: dim %d of size %d cannot be sliced", ErrInvalid, i, shape[i])
		}
	}
	return m, nil
}

// Clone returns a copy of m.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	copy(out, m)
	return out
}

// Equal reports whether two mappings are identical.
func (m Mapping) Equal(other Mapping) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// IndexOf returns the dimension holding role a, or -1.
func (m Mapping) IndexOf(a Axis) int {
	for i, d := range m {
		if d.Axis == a {
			return i
		}
	}
	return -1
}

// Axes returns the roles in the order they appear along the shape.
func (m Mapping) Axes() []Axis {
	var out []Axis
	for _, d := range m {
		if d.IsAxis() {
			out = append(out, d.Axis)
		}
	}
	return out
}

// IsXBeforeY reports whether the x role precedes the y role, in which case
// a projection must transpose its two remaining axes.
func (m Mapping) IsXBeforeY() bool {
	x, y := m.IndexOf(AxisX), m.IndexOf(AxisY)
	return x >= 0 && y >= 0 && x < y
}

// HasSlicedDims reports whether at least one dimension holds a slice index.
func (m Mapping) HasSlicedDims() bool {
	for _, d := range m {
		if !d.IsAxis() {
			return true
		}
	}
	return false
}

// String formats the mapping as "[0, y, x]".
func (m Mapping) String() string {
	parts := make([]string, len(m))
	for i, d := range m {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Validate checks the mapping invariant against a shape and a required
// number of axes: one dimension per required role, every other dimension an
// in-range index. Trailing dimensions beyond the mapping are locked and not
// checked.
func (m Mapping) Validate(shape []int, axesCount int) error {
	if len(m) > len(shape) {
		return fmt.Errorf("%w: mapping has %d dims, shape has %d", ErrInvalid, len(m), len(shape))
	}

	want := axesCount
	if want > len(m) {
		want = len(m)
	}

	seen := make(map[Axis]bool, MaxAxes)
	for i, d := range m {
		if d.IsAxis() {
			if !d.Axis.Valid() {
				return fmt.Errorf("%w: unknown axis %q at dim %d", ErrInvalid, d.Axis, i)
			}
			if seen[d.Axis] {
				return fmt.Errorf("%w: axis %s mapped twice", ErrInvalid, d.Axis)
			}
			seen[d.Axis] = true
			continue
		}
		if d.Index < 0 || d.Index >= shape[i] {
			return fmt.Errorf("%w: index %d out of range [0, %d) at dim %d", ErrInvalid, d.Index, shape[i], i)
		}
	}

	for _, a := range CanonicalAxes(want) {
		if !seen[a] {
			return fmt.Errorf("%w: axis %s not mapped", ErrInvalid, a)
		}
	}
	if len(seen) != want {
		return fmt.Errorf("%w: %d axes mapped, want %d", ErrInvalid, len(seen), want)
	}
	return nil
}

// Selection returns the slice selection derived from m, e.g. [0, y, x]
// gives "0,:,:". It returns false when no dimension is sliced, in which case
// the whole dataset is requested.
func (m Mapping) Selection() (string, bool) {
	if !m.HasSlicedDims() {
		return "", false
	}

	parts := make([]string, len(m))
	for i, d := range m {
		if d.IsAxis() {
			parts[i] = ":"
		} else {
			parts[i] = strconv.Itoa(d.Index)
		}
	}
	return strings.Join(parts, ","), true
}

// ParseSelection parses a selection string such as "0,:,:" into one entry
// per dimension, -1 standing for a full range. Dimensions not covered by the
// selection are kept whole.
func ParseSelection(sel string, rank int) ([]int, error) {
	out := make([]int, rank)
	for i := range out {
		out[i] = -1
	}
	if sel == "" {
		return out, nil
	}

	parts := strings.Split(sel, ",")
	if len(parts) > rank {
		return nil, fmt.Errorf("%w: selection %q has more than %d dims", ErrInvalid, sel, rank)
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == ":" {
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: selection %q", ErrInvalid, sel)
		}
		out[i] = idx
	}
	return out, nil
}

// SlicedDimsAndMapping drops the sliced dimensions from shape and mapping,
// leaving only the dimensions that hold a role.
func SlicedDimsAndMapping(shape []int, m Mapping) ([]int, Mapping) {
	dims := []int{}
	mapping := Mapping{}
	for i, d := range m {
		if d.IsAxis() {
			dims = append(dims, shape[i])
			mapping = append(mapping, d)
		}
	}
	return dims, mapping
}
