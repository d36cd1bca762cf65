package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/dedup"
	"github.com/mkosuda/spinneret/internal/extract"
	"github.com/mkosuda/spinneret/internal/fetch"
	"github.com/mkosuda/spinneret/internal/politeness"
	"github.com/mkosuda/spinneret/internal/stats"
)

// stubFetcher serves canned responses for robots.txt and sitemap fetches.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]*fetch.Response
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{responses: make(map[string]*fetch.Response)}
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if resp, ok := f.responses[rawURL]; ok {
		return resp, nil
	}
	return &fetch.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
}

// harness wires a pipeline over real detector, statistics, gate, and
// extractor instances, with robots served by the stub fetcher.
type harness struct {
	pipeline   *Pipeline
	fetcher    *stubFetcher
	statistics *stats.Statistics
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	fetcher := newStubFetcher()
	gate := politeness.NewGate(fetcher)
	policy := config.NewScopePolicy(config.DefaultScopeRules(), config.DefaultBannedExtensions())
	extractor := extract.NewExtractor(policy, gate, fetcher)
	detector := dedup.NewDetector()
	statistics := stats.New()

	return &harness{
		pipeline:   New(gate, detector, extractor, statistics, opts...),
		fetcher:    fetcher,
		statistics: statistics,
	}
}

// htmlPage wraps body content in a minimal document.
func htmlPage(body string) []byte {
	return []byte("<html><head><title>t</title></head><body>" + body + "</body></html>")
}

// wordRun returns n space-separated alphabetic words.
func wordRun(n int) string {
	words := []string{"harbor", "signal", "meadow", "copper", "lantern", "ridge", "willow", "ember", "quarry", "drift"}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, words[i%len(words)])
	}
	return strings.Join(parts, " ")
}

func okResponse(body []byte) *fetch.Response {
	return &fetch.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       body,
	}
}

func TestProcessAcceptsPageAndDiscoversScopedLinks(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	page := htmlPage(fmt.Sprintf(
		`<p>%s</p><a href="/about">About</a><a href="https://www.example.com/">Elsewhere</a>`,
		wordRun(300)))

	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", okResponse(page))

	if !result.Accepted {
		t.Fatalf("Process() rejected page: reason=%s", result.Reason)
	}
	// 300 paragraph words plus the two anchor texts.
	if result.Words != 302 {
		t.Errorf("Process() words = %d, want 302", result.Words)
	}
	if len(result.Discovered) != 1 {
		t.Fatalf("Process() discovered %d links, want 1: %v", len(result.Discovered), result.Discovered)
	}
	if got, want := result.Discovered[0], "https://www.ics.uci.edu/about"; got != want {
		t.Errorf("Process() discovered %q, want %q", got, want)
	}

	summary := h.statistics.Snapshot(10)
	if summary.LongestPage.URL != "https://www.ics.uci.edu/" {
		t.Errorf("longest page = %q, want the accepted URL", summary.LongestPage.URL)
	}
}

func TestProcessRejectsNonOKStatus(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp := &fetch.Response{StatusCode: http.StatusMovedPermanently, Header: http.Header{}}

	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", resp)

	if result.Accepted {
		t.Fatal("Process() accepted a redirect response")
	}
	if result.Reason != ReasonBadStatus {
		t.Errorf("Process() reason = %s, want %s", result.Reason, ReasonBadStatus)
	}
}

func TestProcessRejectsOversizedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *fetch.Response
	}{
		{
			name: "declared content length",
			resp: &fetch.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Length": []string{"2048"}},
				Body:       []byte("small"),
			},
		},
		{
			name: "actual body size",
			resp: okResponse([]byte(strings.Repeat("x", 1025))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, WithMaxContentLength(1024))
			result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", tt.resp)

			if result.Accepted {
				t.Fatal("Process() accepted an oversized response")
			}
			if result.Reason != ReasonTooLarge {
				t.Errorf("Process() reason = %s, want %s", result.Reason, ReasonTooLarge)
			}
		})
	}
}

func TestProcessRejectsOutOfScopeURL(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	page := htmlPage(wordRun(300))

	result := h.pipeline.Process(context.Background(), "https://www.example.com/", okResponse(page))

	if result.Accepted {
		t.Fatal("Process() accepted an out-of-scope page")
	}
	if result.Reason != ReasonOutOfScope {
		t.Errorf("Process() reason = %s, want %s", result.Reason, ReasonOutOfScope)
	}
}

func TestProcessRejectsRobotsDisallowed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.fetcher.responses["https://www.ics.uci.edu/robots.txt"] = okResponse(
		[]byte("User-agent: *\nDisallow: /private\n"))
	page := htmlPage(wordRun(300))

	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/private/page", okResponse(page))

	if result.Accepted {
		t.Fatal("Process() accepted a robots-disallowed page")
	}
	// InScope consults the same robots cache, so the rejection may
	// surface as out-of-scope when the rules were already loaded.
	if result.Reason != ReasonRobotsDenied && result.Reason != ReasonOutOfScope {
		t.Errorf("Process() reason = %s, want robots or scope rejection", result.Reason)
	}
}

func TestProcessRejectsExactDuplicate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	page := htmlPage(wordRun(300))

	first := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/a", okResponse(page))
	if !first.Accepted {
		t.Fatalf("Process() rejected the first copy: reason=%s", first.Reason)
	}

	second := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/b", okResponse(page))
	if second.Accepted {
		t.Fatal("Process() accepted a byte-identical duplicate")
	}
	if second.Reason != ReasonExactDuplicate {
		t.Errorf("Process() reason = %s, want %s", second.Reason, ReasonExactDuplicate)
	}
}

func TestProcessRejectsNearDuplicate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	first := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/a",
		okResponse(htmlPage(wordRun(300))))
	if !first.Accepted {
		t.Fatalf("Process() rejected the first page: reason=%s", first.Reason)
	}

	// Same word distribution, different bytes: cosine similarity stays
	// above the threshold while the content hash differs.
	second := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/b",
		okResponse(htmlPage(wordRun(300)+" zebra")))
	if second.Accepted {
		t.Fatal("Process() accepted a near-duplicate page")
	}
	if second.Reason != ReasonNearDuplicate {
		t.Errorf("Process() reason = %s, want %s", second.Reason, ReasonNearDuplicate)
	}
}

func TestProcessRejectsThinPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	page := htmlPage(wordRun(50))

	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", okResponse(page))

	if result.Accepted {
		t.Fatal("Process() accepted a thin page")
	}
	if result.Reason != ReasonTooThin {
		t.Errorf("Process() reason = %s, want %s", result.Reason, ReasonTooThin)
	}
}

func TestProcessRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp := okResponse([]byte("<html><head><title>t</title></head><body></body></html>"))

	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", resp)

	if result.Accepted {
		t.Fatal("Process() accepted a page with no body content")
	}
	if result.Reason != ReasonNoContent {
		t.Errorf("Process() reason = %s, want %s", result.Reason, ReasonNoContent)
	}
}

func TestProcessExpandsSitemapOnDomainRoot(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.fetcher.responses["https://www.ics.uci.edu/robots.txt"] = okResponse(
		[]byte("User-agent: *\nSitemap: https://www.ics.uci.edu/sitemap.xml\n"))
	h.fetcher.responses["https://www.ics.uci.edu/sitemap.xml"] = okResponse([]byte(
		`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.ics.uci.edu/research</loc></url>
  <url><loc>https://www.example.com/outside</loc></url>
</urlset>`))

	page := htmlPage(wordRun(300))
	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", okResponse(page))

	if !result.Accepted {
		t.Fatalf("Process() rejected the root page: reason=%s", result.Reason)
	}
	if len(result.Discovered) != 1 {
		t.Fatalf("Process() discovered %d links, want 1: %v", len(result.Discovered), result.Discovered)
	}
	if got, want := result.Discovered[0], "https://www.ics.uci.edu/research"; got != want {
		t.Errorf("Process() discovered %q, want %q", got, want)
	}
}

func TestProcessSkipsSitemapOnNonRootPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.fetcher.responses["https://www.ics.uci.edu/robots.txt"] = okResponse(
		[]byte("User-agent: *\nSitemap: https://www.ics.uci.edu/sitemap.xml\n"))
	h.fetcher.responses["https://www.ics.uci.edu/sitemap.xml"] = okResponse([]byte(
		`<urlset><url><loc>https://www.ics.uci.edu/research</loc></url></urlset>`))

	page := htmlPage(wordRun(300))
	result := h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/about", okResponse(page))

	if !result.Accepted {
		t.Fatalf("Process() rejected the page: reason=%s", result.Reason)
	}
	if len(result.Discovered) != 0 {
		t.Errorf("Process() discovered %v from a non-root page, want none", result.Discovered)
	}
}

func TestProcessSkipsStatisticsOnRejection(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	page := htmlPage(wordRun(50))

	h.pipeline.Process(context.Background(), "https://www.ics.uci.edu/", okResponse(page))

	summary := h.statistics.Snapshot(10)
	if summary.LongestPage.Words != 0 {
		t.Errorf("rejected page credited %d words to statistics, want 0", summary.LongestPage.Words)
	}
	if len(summary.TopTerms) != 0 {
		t.Errorf("rejected page credited terms to statistics: %v", summary.TopTerms)
	}
}
