package model

import "time"

// Summary is a point-in-time snapshot of crawl statistics, produced
// periodically during a crawl and once at the end. It is the payload every
// report writer renders.
type Summary struct {
	// GeneratedAt is the time the snapshot was taken.
	GeneratedAt time.Time `json:"generatedAt"`

	// Elapsed is the time since the crawl started.
	Elapsed time.Duration `json:"elapsed"`

	// UniquePages is the number of unique URLs marked complete.
	UniquePages int `json:"uniquePages"`

	// PagesPerMinute is the completion rate over the whole crawl so far.
	PagesPerMinute float64 `json:"pagesPerMinute"`

	// Subdomains lists per-hostname page counts, sorted by hostname.
	Subdomains []SubdomainCount `json:"subdomains"`

	// LongestPage is the admitted page with the highest word count.
	LongestPage PageRecord `json:"longestPage"`

	// TopTerms lists the most frequent content terms, stop words excluded,
	// sorted by descending count with ties broken alphabetically.
	TopTerms []TermCount `json:"topTerms"`

	// Seeds are the URLs the crawl started from.
	Seeds []string `json:"seeds,omitempty"`
}

// SubdomainCount is the number of admitted pages under one hostname.
type SubdomainCount struct {
	Host  string `json:"host"`
	Pages int    `json:"pages"`
}

// TermCount is a content term and its total frequency across admitted pages.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// PageRecord identifies a page by URL together with its visible word count.
type PageRecord struct {
	URL   string `json:"url"`
	Words int    `json:"words"`
}
