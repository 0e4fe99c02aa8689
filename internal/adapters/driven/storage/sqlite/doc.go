// Package sqlite provides the SQLite-backed registry store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Rooms and patients live in one database file; both tables
// are keyed by the normalised identity key and written with
// INSERT ... ON CONFLICT DO UPDATE so an upsert replaces every column.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; applied
// versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.salasync/data/registry.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite locking in WAL
// mode with a busy timeout.
package sqlite
