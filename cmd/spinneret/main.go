// Package main provides the entry point for the spinneret CLI.
//
// Spinneret is a polite, domain-restricted web crawler. It maintains a
// crash-recoverable URL frontier, honors robots.txt and per-host crawl
// delays, filters duplicate and low-value pages, and reports crawl
// statistics.
//
// Usage:
//
//	spinneret crawl https://www.ics.uci.edu/
//	spinneret crawl --resume
//
// See --help for all available options.
package main

// main is the entry point for spinneret.
func main() {
	Execute()
}
