package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and identify exactly which
// setting is wrong, so callers can match them with errors.Is() while still
// printing a human-readable message.
var (
	// ErrNoSeeds is returned when no seed URL is configured.
	// A crawl starting from nothing has nothing to fetch.
	ErrNoSeeds = errors.New("no seed URLs: provide seeds as arguments or in the config file")

	// ErrNoScopeRules is returned when the scope policy is empty.
	// Without allow-listed domains every discovered URL would be rejected.
	ErrNoScopeRules = errors.New("no scope rules: at least one allowed domain suffix is required")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 to rely entirely on robots.txt declared delays.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidMaxContentLength is returned when the content length cap is
	// not positive.
	ErrInvalidMaxContentLength = errors.New("invalid max content length: must be positive")

	// ErrInvalidMinWords is returned when the minimum word count is
	// negative. Use 0 to admit pages of any length.
	ErrInvalidMinWords = errors.New("invalid minimum word count: must be non-negative")

	// ErrInvalidSimilarityThreshold is returned when the near-duplicate
	// threshold is outside (0, 1].
	ErrInvalidSimilarityThreshold = errors.New("invalid similarity threshold: must be in (0, 1]")

	// ErrInvalidReportInterval is returned when the report interval is not
	// positive.
	ErrInvalidReportInterval = errors.New("invalid report interval: must be positive")

	// ErrInvalidTopTerms is returned when the top-terms count is not
	// positive.
	ErrInvalidTopTerms = errors.New("invalid top terms count: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
