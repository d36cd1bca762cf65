// Package frontier implements the crawl's persistent, concurrency-safe
// work queue.
//
// The frontier owns three structures kept consistent under one mutex: an
// in-memory map from URL fingerprint to record (authoritative while
// running), a FIFO queue of URLs awaiting fetch, and the durable SQLite
// store mirroring the map. Every mutation writes through to the store
// before it is acknowledged, so a crash loses at most the in-flight
// operation and a resumed crawl re-enqueues exactly the discovered,
// unvisited, still-in-scope URLs.
//
// Next is a non-blocking poll: workers observing an empty frontier decide
// locally whether to back off or terminate.
package frontier
