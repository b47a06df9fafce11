// Package store holds the current document for every path in one workspace.
//
// A Store owns exactly one workspace for its lifetime. Writes go through
// last-write-wins: a document replaces the current one at its path only if
// doc.Compare ranks it higher, otherwise it is a silent no-op.
//
// # Backends
//
//   - MemoryBackend: map guarded by an RWMutex, lost on exit
//   - SQLiteBackend: WAL mode, single writer connection, embedded schema
//
// Backend.Upsert is the atomic compare-and-replace. The SQLite backend does it
// in one INSERT ... ON CONFLICT DO UPDATE ... WHERE statement so no read/write
// window exists between comparing timestamps and replacing the row.
//
// # Ordering
//
// Every listing is sorted by path, byte-wise (COLLATE BINARY). Callers extract
// ids from paths and rely on this order.
//
// # Errors
//
// Absence is ErrNotFound and is expected. Operations after Close fail with
// ErrStoreClosed and are logged at error level, since they indicate a
// lifecycle bug in the caller.
package store
