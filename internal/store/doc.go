// Package store provides a SQLite-backed doublet store.
//
// Every row of the links table is a (source, target) pair identified by an
// autoincrement index:
//   - Content addressing: UNIQUE(source, target) means at most one link per
//     pair; GetOrCreate returns the existing index on conflict.
//   - Stable indexes: AUTOINCREMENT never reuses a deleted index.
//   - Sentinels: the autoincrement sequence is seeded so the first index is
//     link.FirstIndex.
//
// Named leaves live in a separate names table keyed by the NFC-normalized
// name and cascade away with their point.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// An empty path or ":memory:" opens a volatile database that lives as long
// as the Store.
package store
