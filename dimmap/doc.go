// Package dimmap assigns display roles to the dimensions of a dataset.
//
// A Mapping holds one entry per dimension: either an axis role (x or y),
// meaning the dimension spans a visual axis, or a fixed slice index. A
// Mapper keeps a Mapping consistent with a shape and a required number of
// axes across role reassignments and slice changes.
//
// Everything in this package is synchronous and never cached: every request
// is validated on the spot and rejected with ErrInvalid when out of range.
package dimmap
