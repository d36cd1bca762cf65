// Package pipeline decides whether a fetched page enters the corpus.
//
// For each (url, response) pair the admission pipeline runs a fixed stage
// order, short-circuiting on the first rejection: response status and size,
// scope, robots rules, exact-duplicate hash, parse and thin-page checks,
// then near-duplicate similarity. Only a page passing every stage updates
// the crawl statistics and yields newly discovered links.
//
// Rejections are results, not errors: every rejection path returns an
// empty discovery list and a reason, and the worker loop marks the URL
// invalid on the frontier. Acceptance implies MarkComplete. Statistics are
// credited only on full acceptance.
package pipeline
