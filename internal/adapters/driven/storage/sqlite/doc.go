// Package sqlite provides a persistent vector index backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Entries hold the chunk text, provenance and the
// embedding as a little-endian float32 BLOB.
//
// # Search
//
// On open, all entries are loaded into an in-memory snapshot that answers
// queries with brute-force cosine similarity. Writes go to the database
// first and are mirrored into the snapshot once committed.
//
// # Data Location
//
// The database is stored at <index dir>/index.db, by default ~/.prepkit/index/index.db.
//
// # Thread Safety
//
// All operations are thread-safe. Writers are serialised; readers never
// block on SQLite.
package sqlite
