package domain

import "sync"

// Tracker holds the domain state of one visualization: the data domain of
// the latest values, the user's CustomDomain and the active scale.
//
// After the data domain changes, the next Displayed call ignores the custom
// domain and returns the fresh data range; the custom bounds apply again
// from the call after that.
//
// A Tracker is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	scale     ScaleType
	custom    CustomDomain
	autoScale bool

	slice []float64
	full  []float64

	data    Domain
	hasData bool
	stale   bool
}

// NewTracker returns a Tracker for the given scale with auto-scaling on.
func NewTracker(scale ScaleType) *Tracker {
	return &Tracker{scale: scale, autoScale: true}
}

// Update records the values currently displayed (slice) and the values of
// the whole dataset (full, may be nil). With auto-scaling on the data
// domain follows slice, otherwise full. It reports whether the data domain
// changed.
func (t *Tracker) Update(slice, full []float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slice, t.full = slice, full
	return t.recompute()
}

// SetDataDomain replaces the data domain directly, bypassing value
// scanning. ok false clears it.
func (t *Tracker) SetDataDomain(d Domain, ok bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slice, t.full = nil, nil
	return t.setData(d, ok)
}

// SetScale changes the scale, recomputing the data domain from the last
// values. It reports whether the data domain changed.
func (t *Tracker) SetScale(s ScaleType) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scale == s {
		return false
	}
	t.scale = s
	if t.slice == nil && t.full == nil {
		return false
	}
	return t.recompute()
}

// Scale returns the active scale.
func (t *Tracker) Scale() ScaleType {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

// SetAutoScale toggles whether the data domain follows the displayed slice
// or the whole dataset. It reports whether the data domain changed.
func (t *Tracker) SetAutoScale(on bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoScale == on {
		return false
	}
	t.autoScale = on
	return t.recompute()
}

// SetCustom replaces the user overrides.
func (t *Tracker) SetCustom(c CustomDomain) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.custom = c
}

// Custom returns the user overrides.
func (t *Tracker) Custom() CustomDomain {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.custom
}

// DataDomain returns the raw data domain, false when there is none.
func (t *Tracker) DataDomain() (Domain, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data, t.hasData
}

// Displayed returns the domain to display with any fallback warnings. It
// returns false when there is no data domain. A call right after a data
// domain change consumes the one-read suspension of the custom domain.
func (t *Tracker) Displayed() (Domain, Warnings, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasData {
		return Domain{}, Warnings{}, false
	}

	if t.stale {
		t.stale = false
		return t.data, Warnings{}, true
	}

	d, w := SafeDomain(VisDomain(t.custom, t.data), t.data, t.scale)
	return d, w, true
}

func (t *Tracker) recompute() bool {
	values := t.slice
	if !t.autoScale && t.full != nil {
		values = t.full
	}
	d, ok := ComputeDomain(values, t.scale)
	return t.setData(d, ok)
}

func (t *Tracker) setData(d Domain, ok bool) bool {
	if ok == t.hasData && (!ok || d == t.data) {
		return false
	}
	t.data, t.hasData = d, ok
	t.stale = ok
	return true
}
