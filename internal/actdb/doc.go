// Package actdb implements the ActDB append-only log and its query engine.
//
// ActDB keeps an ordered log of entries. A value entry holds a value handed
// in by the caller. An action entry holds a derivation function plus
// arguments; its value is computed on first read and cached forever.
//
// ARCHITECTURE:
//
// Single Append Path:
// Store and Act are the only mutations. Each one assigns the next version
// (and, for actions, the next seq), updates the id and seq indices, and
// releases the write lock before returning. Nothing else writes the log or
// the indices.
//
// Lazy Resolution:
// A query that hydrates an action entry consults the value cache. On a miss
// the action runs exactly once (concurrent readers share one evaluation)
// against a Handle bounded to the entry's version - 1. The handle cannot
// observe the entry itself or anything newer, so dependencies always point
// backwards in the log and replay reproduces every value.
//
// Time Travel:
// Every query can be bounded with AtVersion(n): the log then behaves as if
// it contained only entries with version <= n. Bounds compose by taking the
// minimum, so a handle derived from a bounded handle can only narrow.
//
// CRITICAL: Actions must be pure functions of (handle, args). The engine
// caches the first result and never re-runs the action, so an action that
// reads wall clocks, globals, or anything outside its handle silently breaks
// replay. WithVerify(true) re-runs actions on every cache hit and reports a
// NONDETERMINISTIC_ACTION fault when results differ; enable it in tests.
//
// Not-found is never an error: lookups return nil rows or empty results.
// The only error Query returns is INVALID_REQUEST for a malformed request.
package actdb
