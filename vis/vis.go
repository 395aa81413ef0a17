// Package vis resolves which visualizations can display a dataset.
//
// The package holds no policy about which visualization is shown; it only
// reports what a dataset supports and what its NeXus attributes ask for.
package vis

import (
	"strings"

	"github.com/jonwraymond/h5core/entity"
)

// Kind names a visualization.
type Kind string

const (
	Raw         Kind = "Raw"
	Scalar      Kind = "Scalar"
	Matrix      Kind = "Matrix"
	Line        Kind = "Line"
	Heatmap     Kind = "Heatmap"
	ComplexLine Kind = "ComplexLine"
	Complex     Kind = "Complex"
	RGB         Kind = "RGB"
)

// Kinds lists every visualization in ascending order of preference.
var Kinds = []Kind{Raw, Scalar, Matrix, Line, Heatmap, ComplexLine, Complex, RGB}

// Attribute names read by the resolver.
const (
	AttrInterpretation = "interpretation"
	AttrClass          = "CLASS"
)

// AxesCount returns how many dimensions the visualization spans, the role
// count handed to a dimmap.Mapper. RGB spans two axes plus a locked
// channel dimension.
func AxesCount(k Kind) int {
	switch k {
	case Line, ComplexLine:
		return 1
	case Matrix, Heatmap, Complex, RGB:
		return 2
	default:
		return 0
	}
}

// LockedDims returns the number of trailing dimensions the visualization
// keeps whole.
func LockedDims(k Kind) int {
	if k == RGB {
		return 1
	}
	return 0
}

// ResolveInterpretation maps the NeXus interpretation attribute to a Kind.
// It returns false when the attribute is missing or unknown.
func ResolveInterpretation(attrs map[string]any) (Kind, bool) {
	v, ok := attrs[AttrInterpretation].(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(v) {
	case "spectrum":
		return Line, true
	case "image":
		return Heatmap, true
	case "rgb-image":
		return RGB, true
	default:
		return "", false
	}
}

// Supports reports whether k can display ds. attrs holds the attribute
// values of ds and may be nil.
func Supports(k Kind, ds *entity.Dataset, attrs map[string]any) bool {
	if ds == nil {
		return false
	}
	t, shape := ds.Type, ds.Shape

	switch k {
	case Raw:
		return !shape.IsNull()
	case Scalar:
		return printable(t) && shape.IsScalar()
	case Matrix:
		return printable(t) && shape.IsArray()
	case Line:
		return t.IsNumericLike() && shape.IsArray()
	case Heatmap:
		return t.IsNumericLike() && shape.Rank() >= 2
	case ComplexLine:
		return t.Class == entity.ClassComplex && shape.IsArray()
	case Complex:
		return t.Class == entity.ClassComplex && shape.Rank() >= 2
	case RGB:
		class, _ := attrs[AttrClass].(string)
		return class == "IMAGE" && shape.Rank() == 3 && t.IsNumeric()
	default:
		return false
	}
}

// Supported lists the kinds that can display ds, in Kinds order.
func Supported(ds *entity.Dataset, attrs map[string]any) []Kind {
	var out []Kind
	for _, k := range Kinds {
		if Supports(k, ds, attrs) {
			out = append(out, k)
		}
	}
	return out
}

// Default returns the interpretation of ds when it is supported, otherwise
// the most preferred supported kind. It returns false when nothing fits.
func Default(ds *entity.Dataset, attrs map[string]any) (Kind, bool) {
	if k, ok := ResolveInterpretation(attrs); ok && Supports(k, ds, attrs) {
		return k, true
	}
	supported := Supported(ds, attrs)
	if len(supported) == 0 {
		return "", false
	}
	return supported[len(supported)-1], true
}

func printable(t entity.DType) bool {
	switch t.Class {
	case entity.ClassString, entity.ClassComplex:
		return true
	}
	return t.IsNumericLike()
}
