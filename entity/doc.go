// Package entity models the hierarchical namespace of an HDF5 file as it is
// reported by a metadata service: groups, datasets, datatypes and links that
// could not be resolved.
//
// Entities are immutable values. A cache stores them as returned by the
// backend and replaces them wholesale on re-fetch.
package entity
