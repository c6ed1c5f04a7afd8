// Package sqlite provides a persistent perceptual hash cache backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Hashes are keyed by image content digest, so repeated
// comparisons of documents sharing images skip the DCT hashing step.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database is opened in WAL
// mode with a busy timeout so concurrent page workers do not fail on locks.
package sqlite
