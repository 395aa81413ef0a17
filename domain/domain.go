package domain

import (
	"fmt"
	"math"
)

// Domain is a [min, max] range.
type Domain [2]float64

// Min returns the lower bound.
func (d Domain) Min() float64 { return d[0] }

// Max returns the upper bound.
func (d Domain) Max() float64 { return d[1] }

// IsEmpty reports whether both bounds are equal.
func (d Domain) IsEmpty() bool { return d[0] == d[1] }

func (d Domain) String() string {
	return fmt.Sprintf("[%g, %g]", d[0], d[1])
}

// Bounds summarizes the finite values of a dataset.
type Bounds struct {
	Min               float64
	Max               float64
	PositiveMin       float64 // smallest value >= 0, +Inf if none
	StrictPositiveMin float64 // smallest value > 0, +Inf if none
}

func (b *Bounds) add(v float64) {
	b.Min = math.Min(b.Min, v)
	b.Max = math.Max(b.Max, v)
	if v >= 0 {
		b.PositiveMin = math.Min(b.PositiveMin, v)
	}
	if v > 0 {
		b.StrictPositiveMin = math.Min(b.StrictPositiveMin, v)
	}
}

// Option configures GetBounds and ComputeDomain.
type Option func(*options)

type options struct {
	errs   []float64
	ignore func(float64) bool
}

// WithErrors extends each value by its error bar, errs[i] applying to
// values[i]. Missing or zero entries add nothing.
func WithErrors(errs []float64) Option {
	return func(o *options) {
		o.errs = errs
	}
}

// WithIgnore skips values for which fn returns true, such as fill values.
func WithIgnore(fn func(float64) bool) Option {
	return func(o *options) {
		o.ignore = fn
	}
}

// GetBounds scans values, skipping NaN and infinities. It returns false
// when no finite value remains.
func GetBounds(values []float64, opts ...Option) (Bounds, bool) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b := Bounds{
		Min:               math.Inf(1),
		Max:               math.Inf(-1),
		PositiveMin:       math.Inf(1),
		StrictPositiveMin: math.Inf(1),
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if o.ignore != nil && o.ignore(v) {
			continue
		}
		b.add(v)
		if i < len(o.errs) && o.errs[i] != 0 && !math.IsNaN(o.errs[i]) {
			b.add(v - o.errs[i])
			b.add(v + o.errs[i])
		}
	}

	if math.IsInf(b.Min, 1) {
		return Bounds{}, false
	}
	return b, true
}

// ValidDomainForScale turns bounds into a domain the scale can display.
// Under Log, a domain is unsupported when no value is strictly positive,
// and a range reaching down to zero or below is clamped to the smallest
// strictly positive value.
func ValidDomainForScale(b Bounds, scale ScaleType) (Domain, bool) {
	if scale == Log {
		if math.IsInf(b.StrictPositiveMin, 1) {
			return Domain{}, false
		}
		if b.Min <= 0 {
			return Domain{b.StrictPositiveMin, b.Max}, true
		}
	}
	return Domain{b.Min, b.Max}, true
}

// ComputeDomain returns the display domain of values under scale, or false
// when the values leave nothing to display.
func ComputeDomain(values []float64, scale ScaleType, opts ...Option) (Domain, bool) {
	b, ok := GetBounds(values, opts...)
	if !ok {
		return Domain{}, false
	}
	return ValidDomainForScale(b, scale)
}

// ExtendDomain pads d by factor for axis display: (max-min)*factor on each
// side for Linear and SymLog, a (1+factor) ratio for Log. A zero-width
// domain is widened around its value. The result never drops below the
// scale's valid minimum.
func ExtendDomain(d Domain, factor float64, scale ScaleType) (Domain, error) {
	if factor <= 0 {
		return d, nil
	}

	validMin := scale.ValidMin()
	if d.Min() < validMin {
		return d, fmt.Errorf("%w: %v not compatible with %s scale", ErrInvalid, d, scale)
	}

	var ext Domain
	switch {
	case d.IsEmpty():
		ext = extendEmpty(d.Min(), factor, scale)
	case scale == Log:
		ext = Domain{d.Min() / (1 + factor), d.Max() * (1 + factor)}
	default:
		pad := (d.Max() - d.Min()) * factor
		ext = Domain{d.Min() - pad, d.Max() + pad}
	}

	ext[0] = math.Max(validMin, ext[0])
	return ext, nil
}

func extendEmpty(v, factor float64, scale ScaleType) Domain {
	if scale == Log {
		return Domain{v * math.Pow(10, -factor), v * math.Pow(10, factor)}
	}
	if v == 0 {
		return Domain{-1, 1}
	}
	pad := math.Abs(v) * factor
	return Domain{v - pad, v + pad}
}

// ClampBound limits v to a range that stays finite once scaled.
func ClampBound(v float64) float64 {
	limit := math.MaxFloat64 / 2
	return math.Max(-limit, math.Min(limit, v))
}
