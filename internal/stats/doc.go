// Package stats accumulates running crawl statistics.
//
// A single Statistics instance is shared by the frontier (page and
// subdomain counters on completion) and the admission pipeline (term
// frequencies and the largest-page record on acceptance). It is explicitly
// owned and injected, never package state, so multiple crawls can run in
// one process and tests tear down cleanly.
//
// All updates happen under one internal mutex that is never held across
// I/O; Snapshot copies the counters out so report generation never stalls
// the crawl workers.
package stats
