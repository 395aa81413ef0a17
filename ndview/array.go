package ndview

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when a buffer, shape or index list disagree.
var ErrShapeMismatch = errors.New("ndview: shape mismatch")

// Array is a strided view over a flat buffer.
type Array[T any] struct {
	Data   []T
	Shape  []int
	Stride []int
	Offset int
}

// New wraps data as a dense row-major array of the given shape.
func New[T any](data []T, shape []int) (Array[T], error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return Array[T]{}, fmt.Errorf("%w: negative dimension in %v", ErrShapeMismatch, shape)
		}
		size *= d
	}
	if size != len(data) {
		return Array[T]{}, fmt.Errorf("%w: buffer has %d elements, shape %v needs %d",
			ErrShapeMismatch, len(data), shape, size)
	}

	return Array[T]{
		Data:   data,
		Shape:  append([]int(nil), shape...),
		Stride: rowMajorStrides(shape),
	}, nil
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Rank returns the number of dimensions of the view.
func (a Array[T]) Rank() int { return len(a.Shape) }

// Size returns the number of elements in the view.
func (a Array[T]) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// At returns the element at the given multi-index.
func (a Array[T]) At(idx ...int) T {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("ndview: At got %d indices for rank %d", len(idx), len(a.Shape)))
	}
	pos := a.Offset
	for i, v := range idx {
		if v < 0 || v >= a.Shape[i] {
			panic(fmt.Sprintf("ndview: index %d out of range [0, %d) on dim %d", v, a.Shape[i], i))
		}
		pos += v * a.Stride[i]
	}
	return a.Data[pos]
}

// Pick fixes dimensions to an index, dropping them from the view. One entry
// per dimension: a negative entry keeps the dimension whole. Missing
// trailing entries keep their dimensions.
func (a Array[T]) Pick(idx ...int) (Array[T], error) {
	if len(idx) > len(a.Shape) {
		return Array[T]{}, fmt.Errorf("%w: %d indices for rank %d", ErrShapeMismatch, len(idx), len(a.Shape))
	}

	out := Array[T]{Data: a.Data, Offset: a.Offset}
	for i := range a.Shape {
		if i < len(idx) && idx[i] >= 0 {
			if idx[i] >= a.Shape[i] {
				return Array[T]{}, fmt.Errorf("%w: index %d out of range [0, %d) on dim %d",
					ErrShapeMismatch, idx[i], a.Shape[i], i)
			}
			out.Offset += idx[i] * a.Stride[i]
			continue
		}
		out.Shape = append(out.Shape, a.Shape[i])
		out.Stride = append(out.Stride, a.Stride[i])
	}
	if out.Shape == nil {
		out.Shape, out.Stride = []int{}, []int{}
	}
	return out, nil
}

// Transpose reorders the dimensions of the view: dimension i of the result
// is dimension perm[i] of a.
func (a Array[T]) Transpose(perm ...int) (Array[T], error) {
	if len(perm) != len(a.Shape) {
		return Array[T]{}, fmt.Errorf("%w: permutation %v for rank %d", ErrShapeMismatch, perm, len(a.Shape))
	}

	seen := make([]bool, len(perm))
	out := Array[T]{
		Data:   a.Data,
		Offset: a.Offset,
		Shape:  make([]int, len(perm)),
		Stride: make([]int, len(perm)),
	}
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return Array[T]{}, fmt.Errorf("%w: invalid permutation %v", ErrShapeMismatch, perm)
		}
		seen[p] = true
		out.Shape[i] = a.Shape[p]
		out.Stride[i] = a.Stride[p]
	}
	return out, nil
}

// Materialize copies the elements of the view, in row-major order, into a
// new dense array that does not alias a.Data.
func (a Array[T]) Materialize() Array[T] {
	size := a.Size()
	data := make([]T, 0, size)

	if size > 0 {
		idx := make([]int, len(a.Shape))
		pos := a.Offset
		for {
			data = append(data, a.Data[pos])

			// odometer increment, last dimension fastest
			d := len(idx) - 1
			for ; d >= 0; d-- {
				idx[d]++
				pos += a.Stride[d]
				if idx[d] < a.Shape[d] {
					break
				}
				pos -= idx[d] * a.Stride[d]
				idx[d] = 0
			}
			if d < 0 {
				break
			}
		}
	}

	return Array[T]{
		Data:   data,
		Shape:  append([]int{}, a.Shape...),
		Stride: rowMajorStrides(a.Shape),
	}
}

// Rows returns a 2-D view as nested slices, mostly for inspection and tests.
func (a Array[T]) Rows() ([][]T, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("%w: Rows needs rank 2, got %d", ErrShapeMismatch, len(a.Shape))
	}
	rows := make([][]T, a.Shape[0])
	for i := range rows {
		rows[i] = make([]T, a.Shape[1])
		for j := range rows[i] {
			rows[i][j] = a.At(i, j)
		}
	}
	return rows, nil
}
