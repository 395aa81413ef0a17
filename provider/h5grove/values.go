package h5grove

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
)

// binaryType returns the element type the server sends for ds with
// dtype=safe: little-endian, half floats widened to float32, 64-bit
// integers converted to float64 and booleans sent as bytes.
func binaryType(ds *entity.Dataset) (entity.DType, bool) {
	if ds == nil || ds.Shape.IsNull() {
		return entity.DType{}, false
	}
	t := ds.Type
	switch t.Class {
	case entity.ClassBool:
		return entity.UintType(8, entity.LittleEndian), true
	case entity.ClassFloat:
		switch {
		case t.Size <= 32:
			return entity.FloatType(32, entity.LittleEndian), true
		default:
			return entity.FloatType(64, entity.LittleEndian), true
		}
	case entity.ClassInteger, entity.ClassUnsigned:
		switch t.Size {
		case 8, 16, 32:
			if t.Class == entity.ClassInteger {
				return entity.IntType(t.Size, entity.LittleEndian), true
			}
			return entity.UintType(t.Size, entity.LittleEndian), true
		case 64:
			return entity.FloatType(64, entity.LittleEndian), true
		}
	}
	return entity.DType{}, false
}

// decodeBinary decodes a little-endian buffer of t elements into a typed
// slice.
func decodeBinary(buf []byte, t entity.DType) (any, error) {
	size := t.ByteSize()
	if size == 0 || len(buf)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes for %s elements", ErrBadResponse, len(buf), t)
	}
	n := len(buf) / size
	le := binary.LittleEndian

	switch {
	case t.Class == entity.ClassFloat && size == 4:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(buf[i*4:]))
		}
		return out, nil
	case t.Class == entity.ClassFloat && size == 8:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(le.Uint64(buf[i*8:]))
		}
		return out, nil
	case t.Class == entity.ClassInteger && size == 1:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(buf[i])
		}
		return out, nil
	case t.Class == entity.ClassInteger && size == 2:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(le.Uint16(buf[i*2:]))
		}
		return out, nil
	case t.Class == entity.ClassInteger && size == 4:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(le.Uint32(buf[i*4:]))
		}
		return out, nil
	case t.Class == entity.ClassUnsigned && size == 1:
		return bytes.Clone(buf), nil
	case t.Class == entity.ClassUnsigned && size == 2:
		out := make([]uint16, n)
		for i := range out {
			out[i] = le.Uint16(buf[i*2:])
		}
		return out, nil
	case t.Class == entity.ClassUnsigned && size == 4:
		out := make([]uint32, n)
		for i := range out {
			out[i] = le.Uint32(buf[i*4:])
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no binary decoding for %s", ErrBadResponse, t)
}

// first returns the only element of a one-element typed slice.
func first(data any) any {
	switch d := data.(type) {
	case []float32:
		return d[0]
	case []float64:
		return d[0]
	case []int8:
		return d[0]
	case []int16:
		return d[0]
	case []int32:
		return d[0]
	case []uint8:
		return d[0]
	case []uint16:
		return d[0]
	case []uint32:
		return d[0]
	}
	return data
}

// decodeJSONValue decodes a JSON value, flattening nested arrays into a
// row-major slice and inferring the shape from the nesting. Arrays of
// numbers become []float64.
func decodeJSONValue(body []byte) (provider.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return provider.Value{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	arr, ok := raw.([]any)
	if !ok {
		return provider.Value{Data: scalar(raw), Shape: []int{}}, nil
	}

	shape := []int{}
	for level := any(arr); ; {
		a, ok := level.([]any)
		if !ok {
			break
		}
		shape = append(shape, len(a))
		if len(a) == 0 {
			break
		}
		level = a[0]
	}

	flat := make([]any, 0)
	if err := flatten(arr, shape, &flat); err != nil {
		return provider.Value{}, err
	}

	numbers := make([]float64, len(flat))
	for i, v := range flat {
		n, ok := v.(json.Number)
		if !ok {
			return provider.Value{Data: scalars(flat), Shape: shape}, nil
		}
		f, err := n.Float64()
		if err != nil {
			return provider.Value{Data: scalars(flat), Shape: shape}, nil
		}
		numbers[i] = f
	}
	return provider.Value{Data: numbers, Shape: shape}, nil
}

func flatten(v []any, shape []int, out *[]any) error {
	if len(v) != shape[0] {
		return fmt.Errorf("%w: ragged array", ErrBadResponse)
	}
	if len(shape) == 1 {
		for _, item := range v {
			if _, nested := item.([]any); nested {
				return fmt.Errorf("%w: ragged array", ErrBadResponse)
			}
		}
		*out = append(*out, v...)
		return nil
	}
	for _, item := range v {
		sub, ok := item.([]any)
		if !ok {
			return fmt.Errorf("%w: ragged array", ErrBadResponse)
		}
		if err := flatten(sub, shape[1:], out); err != nil {
			return err
		}
	}
	return nil
}

// scalar converts JSON numbers to float64 and leaves other values alone.
func scalar(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

func scalars(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = scalar(v)
	}
	return out
}
