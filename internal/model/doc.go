// Package model defines the core data structures shared across spinneret.
//
// This package contains the following main types:
//   - URLRecord: One discovered URL with its fingerprint and visited flag
//   - Summary: A point-in-time snapshot of crawl statistics for reporting
//
// It also owns URL identity: NormalizeURL canonicalizes raw URLs and
// Fingerprint derives the stable key under which a URL is queued and
// persisted. Multiple packages (frontier, database, report) need these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
