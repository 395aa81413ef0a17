package provider

import (
	"context"
	"errors"
)

// Sentinel errors returned by caches and sources.
var (
	// ErrNotFound indicates that no entity exists at the requested path.
	ErrNotFound = errors.New("provider: entity not found")

	// ErrUnsupported indicates that the source lacks an optional capability.
	ErrUnsupported = errors.New("provider: operation not supported by source")

	// ErrNotDataset indicates a value request for an entity that is not a
	// dataset.
	ErrNotDataset = errors.New("provider: entity is not a dataset")
)

// ErrCancelled indicates that an in-flight fetch was cancelled. It matches
// context.Canceled, so sources may report cancellation either way.
var ErrCancelled error = cancelledError{}

type cancelledError struct{}

func (cancelledError) Error() string { return "provider: fetch cancelled" }

func (cancelledError) Is(target error) bool { return target == context.Canceled }

// ErrNotNumeric indicates a value that cannot be converted to numbers.
var ErrNotNumeric = errors.New("provider: value is not numeric")
