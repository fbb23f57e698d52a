// Package store provides SQLite-backed durable storage for ActDB logs.
//
// The store holds:
//   - Entries: one row per log entry, keyed by version
//   - Results: the value hash of each resolved action entry
//   - Meta: the log id (a UUIDv7 assigned when the file is created)
//
// # Critical Patterns
//
// Action functions are not serializable. An action entry is persisted as
// its registry name plus canonical-JSON args, and Replay looks the name up
// in a Registry. Anonymous actions (added with DB.Act) cannot be saved.
//
// Values are never re-derived into the entries table. Action values are
// recomputed on replay; the results table only holds their hashes so a
// replay can be checked for determinism.
//
// All queries order by version ASC. Ids, versions and seqs are checked
// on replay, together with the stored entry hash.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Hashes are computed via internal/ir/hash.go using RFC 8785 canonical
// JSON and SHA-256 with domain separation.
package store
