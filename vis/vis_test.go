package vis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/h5core/entity"
)

func dataset(shape entity.Shape, t entity.DType) *entity.Dataset {
	return &entity.Dataset{
		Base:  entity.Base{EntityName: "d", EntityPath: "/d"},
		Shape: shape,
		Type:  t,
	}
}

func TestResolveInterpretation(t *testing.T) {
	tests := []struct {
		attrs  map[string]any
		want   Kind
		wantOK bool
	}{
		{map[string]any{"interpretation": "spectrum"}, Line, true},
		{map[string]any{"interpretation": "image"}, Heatmap, true},
		{map[string]any{"interpretation": "rgb-image"}, RGB, true},
		{map[string]any{"interpretation": "vertex"}, "", false},
		{map[string]any{"interpretation": 3}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := ResolveInterpretation(tt.attrs)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ResolveInterpretation(%v) = %q, %v; want %q, %v", tt.attrs, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSupported(t *testing.T) {
	f64 := entity.FloatType(64, entity.LittleEndian)

	tests := []struct {
		name  string
		ds    *entity.Dataset
		attrs map[string]any
		want  []Kind
	}{
		{"scalar float", dataset(entity.ScalarShape(), f64), nil, []Kind{Raw, Scalar}},
		{"1d float", dataset(entity.Shape{10}, f64), nil, []Kind{Raw, Matrix, Line}},
		{"3d float", dataset(entity.Shape{2, 3, 4}, f64), nil, []Kind{Raw, Matrix, Line, Heatmap}},
		{"string array", dataset(entity.Shape{3}, entity.StrType("UTF-8", 0)), nil, []Kind{Raw, Matrix}},
		{"null", dataset(nil, f64), nil, nil},
		{"complex 2d", dataset(entity.Shape{2, 2}, entity.ComplexType(f64)), nil,
			[]Kind{Raw, Matrix, ComplexLine, Complex}},
		{"rgb image", dataset(entity.Shape{4, 4, 3}, entity.UintType(8, entity.LittleEndian)),
			map[string]any{"CLASS": "IMAGE"}, []Kind{Raw, Matrix, Line, Heatmap, RGB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Supported(tt.ds, tt.attrs)); diff != "" {
				t.Errorf("Supported() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	ds := dataset(entity.Shape{5, 6}, entity.FloatType(32, entity.LittleEndian))

	if got, _ := Default(ds, nil); got != Heatmap {
		t.Errorf("Default() = %q, want Heatmap", got)
	}
	if got, _ := Default(ds, map[string]any{"interpretation": "spectrum"}); got != Line {
		t.Errorf("Default(spectrum) = %q, want Line", got)
	}
	// interpretation not supported by the dataset falls back
	if got, _ := Default(ds, map[string]any{"interpretation": "rgb-image"}); got != Heatmap {
		t.Errorf("Default(rgb-image on 2D) = %q, want Heatmap", got)
	}
	if _, ok := Default(dataset(nil, entity.UnknownType()), nil); ok {
		t.Error("Default() ok = true for null dataset")
	}
}

func TestAxesCount(t *testing.T) {
	tests := map[Kind]int{Raw: 0, Scalar: 0, Line: 1, Heatmap: 2, RGB: 2, Matrix: 2}
	for k, want := range tests {
		if got := AxesCount(k); got != want {
			t.Errorf("AxesCount(%s) = %d, want %d", k, got, want)
		}
	}
	if LockedDims(RGB) != 1 || LockedDims(Heatmap) != 0 {
		t.Error("LockedDims() mismatch")
	}
}
