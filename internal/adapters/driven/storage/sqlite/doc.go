// Package sqlite provides a SQLite-backed implementation of driven.CartStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <dataDir>/carts.db, by default ~/.bookbot/data/carts.db.
//
// # Thread Safety
//
// All operations are thread-safe. Cart updates run in a transaction and are
// additionally serialised in-process so read-modify-write never interleaves.
package sqlite
