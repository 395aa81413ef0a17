// Package provider caches the entities, values and attributes of one HDF5
// file behind a DataSource.
//
// A Session owns three caches built on cache.Store:
//
//   - EntityCache resolves paths to entities. Fetching a group also caches
//     its non-group children, so opening a dataset listed by its parent
//     costs no backend call.
//   - ValueCache fetches dataset values for a path and selection. In-flight
//     fetches can be cancelled together with CancelOngoing; the cancelled
//     requests keep their failure until EvictCancelled.
//   - AttrCache fetches attribute values per entity.
//
// Caches are never shared between sessions and there is no package-level
// state.
package provider
