// Package crawler runs the crawl loop over the frontier.
//
// # Architecture
//
// The package is designed around the Engine type, which drives a fixed
// pool of workers (errgroup) over the shared frontier. Each worker loops:
// dequeue, politeness wait, fetch, admission pipeline, record. Discovered
// URLs flow back into the frontier until the crawl drains.
//
// # Termination
//
// The frontier's Next never blocks, so an empty queue is observed rather
// than waited on. A worker finding the frontier empty parks: it registers
// as idle and sleeps one poll interval. When every worker is parked at the
// same time and nothing is queued, the last one to park closes a done
// channel that all workers observe, and Run returns the final summary
// exactly once. Context cancellation (operator interrupt) ends the crawl
// the same way, with the summary reflecting work completed so far.
//
// # Politeness
//
// Per-host rate metering happens here, at dispatch, once per fetch. The
// first touch of a host loads its robots.txt synchronously; the politeness
// wait and the fetch block only the calling worker.
//
// # Usage
//
//	engine := crawler.New(frontier, gate, fetcher, pipeline,
//		crawler.WithWorkers(3))
//	summary, err := engine.Run(ctx)
package crawler
