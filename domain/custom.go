package domain

import "strings"

// CustomDomain holds user overrides. A nil bound follows the data.
type CustomDomain struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// IsAuto reports whether neither bound is overridden.
func (c CustomDomain) IsAuto() bool {
	return c.Min == nil && c.Max == nil
}

// Bound returns a pointer to v, for building a CustomDomain.
func Bound(v float64) *float64 { return &v }

// Warning names a fallback SafeDomain applied.
type Warning string

const (
	// MinGreater: the requested min exceeded the max, the data range was used.
	MinGreater Warning = "min-greater"
	// InvalidMinWithScale: the min cannot be shown on the scale.
	InvalidMinWithScale Warning = "invalid-min-with-scale"
	// InvalidMaxWithScale: the max cannot be shown on the scale.
	InvalidMaxWithScale Warning = "invalid-max-with-scale"
	// CustomMaxFallback: the fallback min exceeded the custom max, so the
	// min was set to the max.
	CustomMaxFallback Warning = "custom-max-fallback"
)

// Warnings reports the fallbacks applied to each bound.
type Warnings struct {
	MinGreater bool
	Min        Warning // InvalidMinWithScale or CustomMaxFallback
	Max        Warning // InvalidMaxWithScale
}

// Any reports whether a fallback was applied.
func (w Warnings) Any() bool {
	return w.MinGreater || w.Min != "" || w.Max != ""
}

// List returns the applied warnings in a stable order.
func (w Warnings) List() []Warning {
	var out []Warning
	if w.MinGreater {
		out = append(out, MinGreater)
	}
	if w.Min != "" {
		out = append(out, w.Min)
	}
	if w.Max != "" {
		out = append(out, w.Max)
	}
	return out
}

func (w Warnings) String() string {
	list := w.List()
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}

// VisDomain merges custom over data, bound by bound.
func VisDomain(custom CustomDomain, data Domain) Domain {
	d := data
	if custom.Min != nil {
		d[0] = *custom.Min
	}
	if custom.Max != nil {
		d[1] = *custom.Max
	}
	return d
}

// SafeDomain makes d displayable under scale, falling back to fallback.
//
// When d's min exceeds its max, fallback is returned whole. Otherwise each
// bound the scale cannot represent is replaced by the matching fallback
// bound; if that leaves the min above the max, the min takes the max.
func SafeDomain(d, fallback Domain, scale ScaleType) (Domain, Warnings) {
	if d.Min() > d.Max() {
		return fallback, Warnings{MinGreater: true}
	}

	minOK, maxOK := scale.Supports(d.Min()), scale.Supports(d.Max())

	safe := d
	if !minOK {
		safe[0] = fallback.Min()
	}
	if !maxOK {
		safe[1] = fallback.Max()
	}

	var w Warnings
	switch {
	case safe[0] > safe[1]:
		safe[0] = safe[1]
		w.Min = CustomMaxFallback
	case !minOK:
		w.Min = InvalidMinWithScale
	}
	if !maxOK {
		w.Max = InvalidMaxWithScale
	}
	return safe, w
}
