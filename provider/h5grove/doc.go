// Package h5grove is a provider.DataSource backed by an h5grove server.
//
// h5grove serves one HDF5 file per request through three endpoints:
// /meta/ for entity metadata, /data/ for dataset values and /attr/ for
// attribute values. Numeric values are read in the binary format with the
// "safe" dtype; everything else is read as JSON.
//
// Requests go through a resilience.Executor, so a flaky server is retried
// and a dead one trips a circuit breaker. Missing paths and malformed
// requests are permanent and never retried.
package h5grove
