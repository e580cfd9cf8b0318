// Package sqlite provides the SQLite-backed DocumentStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Documents and their page-tagged chunks live in one database file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.labelrag/data/metadata.db
//
// # Thread Safety
//
// The database is opened in WAL mode with a busy timeout, so concurrent
// requests can read while another writes.
package sqlite
