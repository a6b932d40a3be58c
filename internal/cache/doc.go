// Package cache provides the deterministic cache keyspace and the store
// layer the transfer engine targets for invalidation and patching.
//
// Keys are derived exclusively through the constructors in keys.go so that
// invalidation after a transfer or rebind always addresses the right entry
// and never touches an unrelated playlist's cache.
//
// Two [Store] implementations are provided: [MemoryStore] for a single grid
// session and [SQLiteStore] for a cache that persists across sessions.
package cache
