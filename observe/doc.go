// Package observe instruments backend fetches with OpenTelemetry traces,
// metrics and structured JSON logs.
//
// It performs no fetching itself. The provider package wraps every entity,
// value and attribute fetch in a Middleware built from an Observer, so each
// fetch yields one span, one set of h5.fetch.* measurements and one log
// line.
package observe
