// Package politeness enforces per-host robots.txt rules and crawl delays.
//
// Each host's state moves Unknown -> Loading -> Ready exactly once per
// process lifetime: the first worker to touch a host fetches and parses its
// robots.txt synchronously, concurrent loads for the same host collapse
// into one fetch, and Ready is terminal. A missing or broken robots.txt is
// never fatal; the gate falls back to an allow-all rule set with the
// default crawl delay.
//
// Request pacing uses one rate.Limiter per host (rate 1/delay, burst 1), so
// no two fetches to one host are dispatched closer together than the host's
// crawl delay, however many workers are running. Hosts never block each
// other.
package politeness
