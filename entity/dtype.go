package entity

import (
	"fmt"
	"regexp"
	"strconv"
)

// DTypeClass is the class of an HDF5 datatype.
type DTypeClass string

const (
	ClassBool      DTypeClass = "Boolean"
	ClassInteger   DTypeClass = "Integer"
	ClassUnsigned  DTypeClass = "Integer (unsigned)"
	ClassFloat     DTypeClass = "Float"
	ClassComplex   DTypeClass = "Complex"
	ClassString    DTypeClass = "String"
	ClassCompound  DTypeClass = "Compound"
	ClassArray     DTypeClass = "Array"
	ClassVLen      DTypeClass = "Array (variable length)"
	ClassEnum      DTypeClass = "Enumeration"
	ClassTime      DTypeClass = "Time"
	ClassBitfield  DTypeClass = "Bitfield"
	ClassOpaque    DTypeClass = "Opaque"
	ClassReference DTypeClass = "Reference"
	ClassUnknown   DTypeClass = "Unknown"
)

// Endianness is the byte order of a numeric type.
type Endianness string

const (
	LittleEndian Endianness = "little-endian"
	BigEndian    Endianness = "big-endian"
)

// DType describes the element type of a dataset or attribute.
//
// Size is expressed in bits for numeric classes and in characters for
// fixed-length strings.
type DType struct {
	Class      DTypeClass       `json:"class"`
	Size       int              `json:"size,omitempty"`
	Endianness Endianness       `json:"endianness,omitempty"`
	CharSet    string           `json:"charSet,omitempty"`
	Base       *DType           `json:"base,omitempty"`
	Fields     map[string]DType `json:"fields,omitempty"`
	Mapping    map[string]int   `json:"mapping,omitempty"`
}

// IntType returns a signed integer type of the given bit size.
func IntType(size int, e Endianness) DType {
	return DType{Class: ClassInteger, Size: size, Endianness: e}
}

// UintType returns an unsigned integer type of the given bit size.
func UintType(size int, e Endianness) DType {
	return DType{Class: ClassUnsigned, Size: size, Endianness: e}
}

// FloatType returns a floating-point type of the given bit size.
func FloatType(size int, e Endianness) DType {
	return DType{Class: ClassFloat, Size: size, Endianness: e}
}

// BoolType returns the boolean type.
func BoolType() DType { return DType{Class: ClassBool} }

// StrType returns a string type. A zero length means variable length.
func StrType(charSet string, length int) DType {
	return DType{Class: ClassString, CharSet: charSet, Size: length}
}

// ComplexType returns a complex type made of two parts of the given type.
func ComplexType(part DType) DType {
	return DType{Class: ClassComplex, Base: &part}
}

// CompoundType returns a compound type with the given fields.
func CompoundType(fields map[string]DType) DType {
	return DType{Class: ClassCompound, Fields: fields}
}

// UnknownType returns the unknown type.
func UnknownType() DType { return DType{Class: ClassUnknown} }

// IsNumeric reports whether values of this type are plain numbers.
func (t DType) IsNumeric() bool {
	switch t.Class {
	case ClassInteger, ClassUnsigned, ClassFloat:
		return true
	}
	return false
}

// IsNumericLike reports whether values can be displayed as numbers
// (numeric, boolean or enum).
func (t DType) IsNumericLike() bool {
	switch t.Class {
	case ClassBool:
		return true
	case ClassEnum:
		return t.Base != nil && t.Base.IsNumeric()
	}
	return t.IsNumeric()
}

// ByteSize returns the size of one element in bytes, or 0 when the type has
// no fixed binary size.
func (t DType) ByteSize() int {
	switch t.Class {
	case ClassInteger, ClassUnsigned, ClassFloat:
		return t.Size / 8
	case ClassBool:
		return 1
	case ClassComplex:
		if t.Base != nil {
			return 2 * t.Base.ByteSize()
		}
	case ClassEnum:
		if t.Base != nil {
			return t.Base.ByteSize()
		}
	}
	return 0
}

// String returns a short human readable description.
func (t DType) String() string {
	switch t.Class {
	case ClassInteger, ClassUnsigned, ClassFloat:
		if t.Endianness != "" {
			return fmt.Sprintf("%s %d-bit, %s", t.Class, t.Size, t.Endianness)
		}
		return fmt.Sprintf("%s %d-bit", t.Class, t.Size)
	case ClassComplex:
		if t.Base != nil {
			return fmt.Sprintf("Complex (%s)", t.Base.String())
		}
	}
	return string(t.Class)
}

var numpyDTypeRe = regexp.MustCompile(`^([<>=|])?([A-Za-z])(\d*)$`)

// ParseNumpyDType parses a numpy array-protocol type string such as "<f8",
// "|b1" or "S10".
func ParseNumpyDType(s string) (DType, error) {
	m := numpyDTypeRe.FindStringSubmatch(s)
	if m == nil {
		return DType{}, fmt.Errorf("%w: %q", ErrInvalidDType, s)
	}

	var endianness Endianness
	switch m[1] {
	case "<":
		endianness = LittleEndian
	case ">":
		endianness = BigEndian
	}

	length := 0
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return DType{}, fmt.Errorf("%w: %q", ErrInvalidDType, s)
		}
		length = n
	}

	switch m[2] {
	case "b":
		return BoolType(), nil
	case "f":
		return FloatType(length*8, endianness), nil
	case "i":
		return IntType(length*8, endianness), nil
	case "u":
		return UintType(length*8, endianness), nil
	case "c":
		// bytes are split evenly between real and imaginary parts
		return ComplexType(FloatType(length/2*8, endianness)), nil
	case "S":
		return StrType("ASCII", length), nil
	case "O":
		return StrType("UTF-8", 0), nil
	default:
		return UnknownType(), nil
	}
}
