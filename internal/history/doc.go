// Package history provides SQLite-based storage for extraction run history.
//
// This package implements the Store, which keeps one row per processed
// input recording:
//   - What was processed (path, kind, page selection)
//   - Which parameters were in effect (language, zoom, cleanup, AI correction)
//   - How the run ended (status, character count, duration, error)
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The Store implements the pipeline's RunRecorder interface. Recording
// is best effort: callers log recording failures and carry on, so a
// broken history database never blocks an extraction.
package history
