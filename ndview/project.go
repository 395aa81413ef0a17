package ndview

import (
	"fmt"

	"github.com/jonwraymond/h5core/dimmap"
)

// Project slices buf along the fixed dimensions of mapping, lays the
// remaining role dimensions out y-major (rows along y, columns along x),
// and materializes the result.
//
// The mapping may be shorter than the shape; trailing dimensions beyond it
// are locked and kept whole after the role dimensions.
func Project[T any](buf []T, shape []int, mapping dimmap.Mapping) (Array[T], error) {
	base, err := New(buf, shape)
	if err != nil {
		return Array[T]{}, err
	}
	return ProjectArray(base, mapping)
}

// ProjectArray is Project on an existing view.
func ProjectArray[T any](base Array[T], mapping dimmap.Mapping) (Array[T], error) {
	if len(mapping) > base.Rank() {
		return Array[T]{}, fmt.Errorf("%w: mapping %v for rank %d", ErrShapeMismatch, mapping, base.Rank())
	}

	picks := make([]int, len(mapping))
	for i, d := range mapping {
		if d.IsAxis() {
			picks[i] = -1
		} else {
			picks[i] = d.Index
		}
	}

	view, err := base.Pick(picks...)
	if err != nil {
		return Array[T]{}, err
	}

	if mapping.IsXBeforeY() {
		perm := make([]int, view.Rank())
		for i := range perm {
			perm[i] = i
		}
		perm[0], perm[1] = 1, 0
		if view, err = view.Transpose(perm...); err != nil {
			return Array[T]{}, err
		}
	}

	return view.Materialize(), nil
}
