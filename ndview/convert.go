package ndview

import (
	"encoding/json"
	"math"
)

// ToFloat64s converts a numeric payload to a float64 slice. Scalars give a
// one-element slice. It returns false for non-numeric payloads.
func ToFloat64s(v any) ([]float64, bool) {
	switch val := v.(type) {
	case []float64:
		return val, true
	case []float32:
		return convertSlice(val), true
	case []int:
		return convertSlice(val), true
	case []int8:
		return convertSlice(val), true
	case []int16:
		return convertSlice(val), true
	case []int32:
		return convertSlice(val), true
	case []int64:
		return convertSlice(val), true
	case []uint:
		return convertSlice(val), true
	case []uint8:
		return convertSlice(val), true
	case []uint16:
		return convertSlice(val), true
	case []uint32:
		return convertSlice(val), true
	case []uint64:
		return convertSlice(val), true
	case []bool:
		out := make([]float64, len(val))
		for i, b := range val {
			if b {
				out[i] = 1
			}
		}
		return out, true
	case []any:
		out := make([]float64, len(val))
		for i, item := range val {
			f, ok := scalarFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		f, ok := scalarFloat(v)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func convertSlice[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func scalarFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case nil:
		return math.NaN(), true
	default:
		return 0, false
	}
}
