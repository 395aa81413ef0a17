package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalid is returned for domains or scale names the engine cannot use.
var ErrInvalid = errors.New("domain: invalid")

// ScaleType selects how values map onto an axis.
type ScaleType int

const (
	// Linear maps values proportionally.
	Linear ScaleType = iota
	// Log maps log10 of strictly positive values.
	Log
	// SymLog is linear near zero and logarithmic away from it.
	SymLog
)

// String returns the lowercase scale name.
func (s ScaleType) String() string {
	switch s {
	case Linear:
		return "linear"
	case Log:
		return "log"
	case SymLog:
		return "symlog"
	default:
		return fmt.Sprintf("ScaleType(%d)", int(s))
	}
}

// ParseScaleType parses a scale name as produced by String.
func ParseScaleType(s string) (ScaleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "log":
		return Log, nil
	case "symlog":
		return SymLog, nil
	default:
		return Linear, fmt.Errorf("%w: unknown scale type %q", ErrInvalid, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ScaleType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ScaleType) UnmarshalText(b []byte) error {
	v, err := ParseScaleType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ValidMin returns the smallest value the scale can represent.
func (s ScaleType) ValidMin() float64 {
	if s == Log {
		return math.SmallestNonzeroFloat64
	}
	return math.Inf(-1)
}

// Supports reports whether v can be placed on the scale.
func (s ScaleType) Supports(v float64) bool {
	return v >= s.ValidMin()
}
