package stats

import (
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/mkosuda/spinneret/internal/model"
)

// Statistics holds the running aggregates of one crawl: unique page count,
// per-subdomain page counts, term frequencies, and the largest admitted
// page. All methods are safe for concurrent use.
type Statistics struct {
	mu sync.Mutex

	// started is when the crawl began, for the pages-per-minute figure.
	started time.Time

	// seeds are the crawl's starting URLs, echoed into summaries.
	seeds []string

	// pages is the number of unique URLs marked complete.
	pages int

	// subdomains counts admitted pages per hostname.
	subdomains map[string]int

	// terms counts stop-word-filtered alphabetic tokens across all
	// admitted pages.
	terms map[string]int

	// largest is the admitted page with the highest word count.
	largest model.PageRecord
}

// New creates an empty Statistics with the crawl clock started now.
func New() *Statistics {
	return &Statistics{
		started:    time.Now(),
		subdomains: make(map[string]int),
		terms:      make(map[string]int),
	}
}

// SetSeeds records the crawl's seed URLs for inclusion in summaries.
func (s *Statistics) SetSeeds(seeds []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeds = append([]string(nil), seeds...)
}

// RecordVisit folds a completed URL into the page and subdomain counters
// and returns the running completion count, which the crawl loop uses for
// its periodic report cadence.
func (s *Statistics) RecordVisit(rawURL string) int {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages++
	if host != "" {
		s.subdomains[host]++
	}
	return s.pages
}

// RecordPage folds an admitted page's tokens into the term-frequency
// counters and updates the largest-page record. The word count credited to
// the page is the full token count; stop words and non-alphabetic tokens
// are excluded only from the term frequencies.
func (s *Statistics) RecordPage(rawURL string, tokens []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tok := range tokens {
		if IsStopWord(tok) || !isAlphabetic(tok) {
			continue
		}
		s.terms[tok]++
	}

	if len(tokens) > s.largest.Words {
		s.largest = model.PageRecord{URL: rawURL, Words: len(tokens)}
	}
}

// UniquePages returns the current unique page count.
func (s *Statistics) UniquePages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// Snapshot produces a point-in-time summary with the topN most frequent
// terms. Counters are copied under the lock; sorting happens on the copies
// so producers and consumers are blocked only for the copy itself.
func (s *Statistics) Snapshot(topN int) *model.Summary {
	s.mu.Lock()
	elapsed := time.Since(s.started)
	pages := s.pages
	largest := s.largest
	seeds := append([]string(nil), s.seeds...)

	subdomains := make([]model.SubdomainCount, 0, len(s.subdomains))
	for host, count := range s.subdomains {
		subdomains = append(subdomains, model.SubdomainCount{Host: host, Pages: count})
	}

	terms := make([]model.TermCount, 0, len(s.terms))
	for term, count := range s.terms {
		terms = append(terms, model.TermCount{Term: term, Count: count})
	}
	s.mu.Unlock()

	sort.Slice(subdomains, func(i, j int) bool {
		return subdomains[i].Host < subdomains[j].Host
	})

	// Count-descending, term-ascending on ties.
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if topN > 0 && len(terms) > topN {
		terms = terms[:topN]
	}

	rate := 0.0
	if minutes := elapsed.Minutes(); minutes > 0 {
		rate = float64(pages) / minutes
	}

	return &model.Summary{
		GeneratedAt:    time.Now(),
		Elapsed:        elapsed,
		UniquePages:    pages,
		PagesPerMinute: rate,
		Subdomains:     subdomains,
		LongestPage:    largest,
		TopTerms:       terms,
		Seeds:          seeds,
	}
}

// isAlphabetic reports whether the token consists solely of ASCII letters.
func isAlphabetic(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
