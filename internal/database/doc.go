// Package database provides the durable URL store backing the frontier.
//
// The store maps URL fingerprints to their normalized URL and visited flag
// in a single SQLite file. The frontier writes through to it on every
// mutation before acknowledging the caller, so a crash loses at most the
// in-flight operation; on restart the store is replayed to rebuild the
// in-memory frontier state.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of a
// hand-rolled append log because:
//  1. No external dependencies - the store is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Autocommit with synchronous=FULL gives the write-then-flush
//     durability the frontier contract requires, without explicit fsync
//     bookkeeping
//  4. The status command can inspect a store without the crawler running
package database
