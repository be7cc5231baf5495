// Package source downloads the prayer-time sheet and tokenizes it into a
// schedule.RawGrid.
//
// A [Fetcher] holds an ordered list of [Candidate] endpoints, typically the
// secured script endpoint first and the public published-sheet CSV second.
// Each attempt adds a cache-busting timestamp, and the shared secret when one
// is configured. The first candidate whose body is neither an "Error:"
// rejection nor malformed CSV wins.
//
// Every failure wraps one of [ErrConfiguration], [ErrTransport],
// [ErrUpstreamRejection] or [ErrTokenization].
package source
