// Package store provides a SQLite archive of published metadata documents.
//
// The archive holds two tables:
//   - documents: canonical JSON documents keyed by content hash
//   - builds: one row per archived build, pointing at its document
//
// Identical documents are stored once. Every Save still records a build,
// so History shows each time a contract was built.
//
// # Ordering
//
// Builds are ordered by seq, a logical clock assigned inside the insert
// transaction. Queries never order by wall time, so results are stable
// across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Document reads go through an in-memory LRU cache keyed by hash.
package store
