package entity

// Shape is the ordered list of dimension sizes of a dataspace.
//
// A nil Shape denotes a null dataspace, an empty non-nil Shape a scalar.
type Shape []int

// ScalarShape returns the shape of a scalar dataspace.
func ScalarShape() Shape { return Shape{} }

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// IsNull reports whether the shape denotes a null dataspace.
func (s Shape) IsNull() bool { return s == nil }

// IsScalar reports whether the shape denotes a scalar.
func (s Shape) IsScalar() bool { return s != nil && len(s) == 0 }

// IsArray reports whether the shape has at least one dimension.
func (s Shape) IsArray() bool { return len(s) > 0 }

// Size returns the number of elements. A scalar has one element and a null
// dataspace none.
func (s Shape) Size() int {
	if s == nil {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if (s == nil) != (other == nil) || len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}
