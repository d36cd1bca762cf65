// Package fetch defines the Fetcher capability and its HTTP implementation.
//
// The crawl core never implements transport itself: the frontier, the
// politeness gate, and the admission pipeline all talk to a Fetcher
// interface. Client is the production implementation over net/http; tests
// substitute in-memory fetchers to exercise the core without a network.
//
// Redirects are deliberately not followed. The admission pipeline rejects
// redirect-class statuses, so the original status code must survive to the
// pipeline rather than be replaced by the redirect target's response.
package fetch
