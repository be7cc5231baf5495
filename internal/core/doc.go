// Package core provides the business logic of the prayer-time board.
//
// It is independent of any transport: the web handlers, the scheduler in
// cmd/server and the tests all drive the same [Service].
//
// # Refresh Flow
//
//  1. [Service.Refresh] tags the context with a new fetch ID
//  2. The [Fetcher] downloads and tokenizes the sheet, trying each source in turn
//  3. The grid is classified by schedule.Parse
//  4. On success the result replaces the current [Snapshot] and is handed to
//     every [Publisher]; on failure the previous snapshot stays in place
//
// Refreshes are not serialized. A manual refresh may overlap a scheduled one,
// and whichever resolves last is what [Service.Current] returns.
//
// # Error Handling
//
// Fetch and parse errors are mapped to user-facing messages with [MapError].
// Each failure kind has a code for support reference:
//
//   - CFG001: no source configured
//   - NET001-NET003: network failures, rejections and timeouts
//   - CSV001: the body is not CSV
//   - DATA001: the sheet layout is not recognized
package core
