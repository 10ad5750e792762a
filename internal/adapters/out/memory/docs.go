// Package memory implements the unit of work and the repositories on an
// in-process store. It is the default storage of the dispatch core.
//
// A unit of work takes the store's single writer lock in Begin and works on
// a private copy of the committed state. Commit swaps the copy in and then
// publishes the domain events recorded by the aggregates that were added or
// updated; Rollback drops the copy. Aggregates handed out by the repositories
// are rebuilt from snapshots, so callers never share memory with the store.
package memory
