package extract

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/fetch"
	"github.com/mkosuda/spinneret/internal/politeness"
)

// Extractor produces candidate URLs from parsed documents and decides
// which URLs fall inside the crawl scope. It consults the politeness gate
// for robots decisions but never triggers a robots fetch itself.
type Extractor struct {
	// policy is the compiled scope policy (allowed suffixes, banned
	// extensions).
	policy *config.ScopePolicy

	// gate answers robots allow/deny queries and lists sitemaps.
	gate *politeness.Gate

	// fetcher retrieves sitemap documents.
	fetcher fetch.Fetcher

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor over the given scope policy, politeness
// gate, and fetcher.
func NewExtractor(policy *config.ScopePolicy, gate *politeness.Gate, fetcher fetch.Fetcher, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		policy:  policy,
		gate:    gate,
		fetcher: fetcher,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Links resolves every anchor of doc against baseURL and returns the
// absolute http/https candidates with fragments stripped. Malformed hrefs
// are logged and skipped; one bad anchor never aborts the extraction.
func (e *Extractor) Links(doc *Document, baseURL *url.URL) []string {
	var links []string

	for _, href := range doc.Anchors() {
		href = strings.TrimSpace(href)
		if href == "" || href == "#" {
			continue
		}
		// Non-navigational schemes common in page markup.
		if strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "data:") {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			e.logger.Debug("skipping malformed href",
				"href", href,
				"base", baseURL.String(),
				"error", err,
			)
			continue
		}

		resolved := baseURL.ResolveReference(ref)
		resolved.Fragment = ""

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}

		links = append(links, resolved.String())
	}

	return links
}

// sitemapDoc covers both sitemap document forms: <urlset> entries carry
// page URLs directly, <sitemapindex> entries point at further sitemaps.
type sitemapDoc struct {
	XMLName  xml.Name     `xml:""`
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// SitemapLinks fetches the sitemaps the host's robots.txt declares and
// returns the page URLs they list. A <sitemapindex> is followed one level
// deep. Used only when the page being processed is a domain root, to seed
// broader coverage once per domain; failures are logged and skipped.
func (e *Extractor) SitemapLinks(ctx context.Context, host string) []string {
	var links []string

	for _, sitemapURL := range e.gate.Sitemaps(host) {
		urls, children := e.fetchSitemap(ctx, sitemapURL)
		links = append(links, urls...)

		for _, child := range children {
			urls, _ := e.fetchSitemap(ctx, child)
			links = append(links, urls...)
		}
	}

	return links
}

// fetchSitemap retrieves and parses one sitemap document, returning its
// page URLs and any nested sitemap references.
func (e *Extractor) fetchSitemap(ctx context.Context, sitemapURL string) (urls, children []string) {
	resp, err := e.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		e.logger.Debug("sitemap fetch failed", "url", sitemapURL, "error", err)
		return nil, nil
	}
	if !resp.IsSuccess() {
		e.logger.Debug("sitemap fetch returned non-success", "url", sitemapURL, "status", resp.StatusCode)
		return nil, nil
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(resp.Body, &doc); err != nil {
		e.logger.Debug("sitemap parse failed", "url", sitemapURL, "error", err)
		return nil, nil
	}

	for _, entry := range doc.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	for _, entry := range doc.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			children = append(children, loc)
		}
	}

	return urls, children
}

// InScope is the composite validity predicate: http/https scheme, host
// matching an allow-listed suffix (honoring any path-prefix restriction),
// no banned extension, and no explicit robots denial. Pure aside from the
// robots cache lookup; it never fetches.
func (e *Extractor) InScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if !e.policy.Contains(u) {
		return false
	}

	return e.gate.IsAllowed(rawURL)
}

// IsRoot reports whether the URL points at a domain root (empty or "/"
// path), the trigger for one-time sitemap expansion.
func IsRoot(u *url.URL) bool {
	return u.Path == "" || u.Path == "/"
}
