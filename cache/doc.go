// Package cache provides an asynchronous keyed store that deduplicates
// concurrent fetches.
//
// A Store runs at most one fetch per key. Every caller asking for a key while
// its fetch is pending waits on the same task and observes the same result.
// Results, failures included, stay cached until they are evicted; callers that
// want to retry a failed key must Evict it first.
//
// Keys are compared by canonical content rather than identity: a Keyer turns
// each key into a deterministic string (canonical JSON, hashed), so freshly
// built structs or maps with the same content share one entry.
package cache
