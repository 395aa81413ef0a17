package domain

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b Domain, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

func TestComputeDomain(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)

	tests := []struct {
		name   string
		values []float64
		scale  ScaleType
		want   Domain
		wantOK bool
	}{
		{"linear", []float64{3, -1, 2}, Linear, Domain{-1, 3}, true},
		{"symlog", []float64{3, -1, 2}, SymLog, Domain{-1, 3}, true},
		{"log mixed sign", []float64{-5, 0.1, 10}, Log, Domain{0.1, 10}, true},
		{"log all positive", []float64{2, 0.5, 8}, Log, Domain{0.5, 8}, true},
		{"log all non-positive", []float64{-5, -1, 0}, Log, Domain{}, false},
		{"log all negative", []float64{-5, -1}, Log, Domain{}, false},
		{"log zero and positive", []float64{0, 3}, Log, Domain{3, 3}, true},
		{"non-finite ignored", []float64{nan, 4, inf, -inf, 1}, Linear, Domain{1, 4}, true},
		{"only non-finite", []float64{nan, inf}, Linear, Domain{}, false},
		{"empty", nil, Linear, Domain{}, false},
		{"single value", []float64{7}, Linear, Domain{7, 7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeDomain(tt.values, tt.scale)
			if ok != tt.wantOK {
				t.Fatalf("ComputeDomain() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ComputeDomain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDomain_Options(t *testing.T) {
	values := []float64{1, 5, -999}

	got, ok := ComputeDomain(values, Linear,
		WithErrors([]float64{0.5, 2}),
		WithIgnore(func(v float64) bool { return v == -999 }))
	if !ok {
		t.Fatal("ComputeDomain() ok = false")
	}
	if want := (Domain{0.5, 7}); got != want {
		t.Errorf("ComputeDomain() = %v, want %v", got, want)
	}
}

func TestGetBounds(t *testing.T) {
	b, ok := GetBounds([]float64{-2, 0, 3})
	if !ok {
		t.Fatal("GetBounds() ok = false")
	}
	if b.Min != -2 || b.Max != 3 || b.PositiveMin != 0 || b.StrictPositiveMin != 3 {
		t.Errorf("GetBounds() = %+v", b)
	}
}

func TestExtendDomain(t *testing.T) {
	tests := []struct {
		name  string
		d     Domain
		f     float64
		scale ScaleType
		want  Domain
	}{
		{"linear", Domain{0, 10}, 0.1, Linear, Domain{-1, 11}},
		{"symlog", Domain{-10, 10}, 0.5, SymLog, Domain{-20, 20}},
		{"log", Domain{1, 10}, 0.2, Log, Domain{1 / 1.2, 12}},
		{"zero factor", Domain{1, 10}, 0, Log, Domain{1, 10}},
		{"empty at zero", Domain{0, 0}, 0.5, Linear, Domain{-1, 1}},
		{"empty negative", Domain{-4, -4}, 0.5, Linear, Domain{-6, -2}},
		{"empty log", Domain{10, 10}, 1, Log, Domain{1, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtendDomain(tt.d, tt.f, tt.scale)
			if err != nil {
				t.Fatalf("ExtendDomain() error = %v", err)
			}
			if !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("ExtendDomain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtendDomain_LogApprox(t *testing.T) {
	got, err := ExtendDomain(Domain{1, 10}, 0.2, Log)
	if err != nil {
		t.Fatalf("ExtendDomain() error = %v", err)
	}
	if !approxEqual(got, Domain{0.833, 12}, 1e-3) {
		t.Errorf("ExtendDomain() = %v, want ~[0.833, 12]", got)
	}
}

func TestExtendDomain_InvalidForLog(t *testing.T) {
	for _, d := range []Domain{{0, 10}, {-1, 10}} {
		if _, err := ExtendDomain(d, 0.2, Log); !errors.Is(err, ErrInvalid) {
			t.Errorf("ExtendDomain(%v, Log) error = %v, want ErrInvalid", d, err)
		}
	}
}

func TestParseScaleType(t *testing.T) {
	for _, s := range []ScaleType{Linear, Log, SymLog} {
		got, err := ParseScaleType(s.String())
		if err != nil || got != s {
			t.Errorf("ParseScaleType(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseScaleType("sqrt"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseScaleType(sqrt) error = %v, want ErrInvalid", err)
	}
}

func TestClampBound(t *testing.T) {
	if got := ClampBound(math.Inf(1)); got != math.MaxFloat64/2 {
		t.Errorf("ClampBound(+Inf) = %v", got)
	}
	if got := ClampBound(3); got != 3 {
		t.Errorf("ClampBound(3) = %v", got)
	}
}
