package provider

import (
	"context"
	"fmt"

	"github.com/jonwraymond/h5core/dimmap"
	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/ndview"
)

// ValueRequest identifies a dataset read. Requests with the same content
// share one cache entry: unset Selection, nil Hints and empty Hints are
// equivalent.
type ValueRequest struct {
	Path string `json:"path"`
	// Selection slices the dataset, e.g. "0,:,:". Empty reads everything.
	Selection string `json:"selection,omitempty"`
	// Hints are passed to the source verbatim (dtype, format...).
	Hints map[string]any `json:"hints,omitempty"`
}

// Value is the payload of a dataset read.
type Value struct {
	// Data is a flat slice in row-major order ([]float64, []int32, []any...)
	// or a scalar.
	Data any
	// Shape is the shape of Data after selection. Empty for a scalar.
	Shape []int
}

// Float64s converts numeric data to float64.
func (v Value) Float64s() ([]float64, bool) {
	return ndview.ToFloat64s(v.Data)
}

// DataSource is the backend consumed by the caches.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: FetchValue must return promptly once ctx is done, with an
//     error matching ErrCancelled or context.Canceled.
//   - Errors: a missing entity is reported with an error matching
//     ErrNotFound. Other errors are surfaced to callers unchanged.
type DataSource interface {
	FetchEntity(ctx context.Context, path string) (entity.Entity, error)
	FetchValue(ctx context.Context, req ValueRequest) (Value, error)
}

// AttrSource is implemented by sources that can read attribute values.
type AttrSource interface {
	// FetchAttrValues returns the values of every attribute of the entity at
	// path, keyed by attribute name.
	FetchAttrValues(ctx context.Context, path string) (map[string]any, error)
}

// Closer is implemented by sources holding resources.
type Closer interface {
	Close() error
}

// SelectedShape returns the shape of the data a selection yields on a
// dataset of the given shape: sliced dimensions are dropped.
func SelectedShape(shape []int, selection string) ([]int, error) {
	picks, err := dimmap.ParseSelection(selection, len(shape))
	if err != nil {
		return nil, err
	}
	out := []int{}
	for i, p := range picks {
		if p < 0 {
			out = append(out, shape[i])
			continue
		}
		if p >= shape[i] {
			return nil, fmt.Errorf("%w: index %d out of range for dim %d of size %d",
				dimmap.ErrInvalid, p, i, shape[i])
		}
	}
	return out, nil
}
