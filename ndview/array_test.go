package ndview

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArray_PickAndTranspose(t *testing.T) {
	a, err := New([]int{0, 1, 2, 3, 4, 5}, []int{2, 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	col, err := a.Pick(-1, 2)
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if diff := cmp.Diff([]int{2, 5}, col.Materialize().Data); diff != "" {
		t.Errorf("column mismatch (-want +got):\n%s", diff)
	}

	tr, err := a.Transpose(1, 0)
	if err != nil {
		t.Fatalf("Transpose() error = %v", err)
	}
	if tr.At(2, 1) != 5 {
		t.Errorf("transposed At(2,1) = %d, want 5", tr.At(2, 1))
	}

	if _, err := a.Transpose(0, 0); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Transpose(0,0) error = %v, want ErrShapeMismatch", err)
	}
}

func TestArray_MaterializeEmpty(t *testing.T) {
	a, err := New([]float64{}, []int{0, 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := a.Materialize()
	if len(got.Data) != 0 || got.Size() != 0 {
		t.Errorf("Materialize() of empty array = %+v", got)
	}
}

func TestToFloat64s(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []float64
		ok   bool
	}{
		{"float32", []float32{1.5, 2}, []float64{1.5, 2}, true},
		{"int16", []int16{-3, 4}, []float64{-3, 4}, true},
		{"uint8", []uint8{255}, []float64{255}, true},
		{"bool", []bool{true, false}, []float64{1, 0}, true},
		{"any", []any{1.0, 2, int64(3)}, []float64{1, 2, 3}, true},
		{"scalar", 7.0, []float64{7}, true},
		{"string", "nope", nil, false},
		{"mixed any", []any{1.0, "x"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64s(tt.in)
			if ok != tt.ok {
				t.Fatalf("ToFloat64s() ok = %v, want %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToFloat64s() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, ok := ToFloat64s([]any{nil})
	if !ok || len(got) != 1 || !math.IsNaN(got[0]) {
		t.Errorf("ToFloat64s([nil]) = %v, %v; want [NaN]", got, ok)
	}
}
