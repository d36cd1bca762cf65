package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/dedup"
	"github.com/mkosuda/spinneret/internal/extract"
	"github.com/mkosuda/spinneret/internal/fetch"
	"github.com/mkosuda/spinneret/internal/politeness"
	"github.com/mkosuda/spinneret/internal/stats"
)

// Reason identifies why a page was rejected, or that it was accepted.
type Reason string

// Admission outcomes.
const (
	ReasonAccepted       Reason = "accepted"
	ReasonBadStatus      Reason = "bad_status"
	ReasonTooLarge       Reason = "too_large"
	ReasonOutOfScope     Reason = "out_of_scope"
	ReasonRobotsDenied   Reason = "robots_denied"
	ReasonExactDuplicate Reason = "exact_duplicate"
	ReasonNoContent      Reason = "no_content"
	ReasonTooThin        Reason = "too_thin"
	ReasonNearDuplicate  Reason = "near_duplicate"
	ReasonBadURL         Reason = "bad_url"
)

// Result is the outcome of processing one fetched page.
type Result struct {
	// Accepted is true when the page passed every admission stage.
	Accepted bool

	// Reason explains a rejection; ReasonAccepted on acceptance.
	Reason Reason

	// Discovered holds the in-scope URLs extracted from an accepted page,
	// ready for the frontier. Empty on any rejection.
	Discovered []string

	// Words is the visible word count of an accepted page.
	Words int
}

// reject builds a rejection result.
func reject(reason Reason) *Result {
	return &Result{Accepted: false, Reason: reason}
}

// Pipeline is the page admission orchestrator. It owns no state of its own;
// the injected detector and statistics instances carry the crawl's memory.
type Pipeline struct {
	// gate answers robots queries for stage two.
	gate *politeness.Gate

	// detector performs the exact and near-duplicate checks.
	detector *dedup.Detector

	// extractor parses scope decisions and outbound links.
	extractor *extract.Extractor

	// statistics receives term frequencies and the largest-page record on
	// acceptance.
	statistics *stats.Statistics

	// maxContentLength rejects responses declaring or carrying more bytes.
	maxContentLength int64

	// minWords rejects pages with fewer visible words.
	minWords int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxContentLength sets the response size cap in bytes.
func WithMaxContentLength(n int64) Option {
	return func(p *Pipeline) {
		p.maxContentLength = n
	}
}

// WithMinWords sets the thin-page word threshold.
func WithMinWords(n int) Option {
	return func(p *Pipeline) {
		p.minWords = n
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over the shared gate, detector, extractor, and
// statistics instances.
func New(gate *politeness.Gate, detector *dedup.Detector, extractor *extract.Extractor, statistics *stats.Statistics, opts ...Option) *Pipeline {
	p := &Pipeline{
		gate:             gate,
		detector:         detector,
		extractor:        extractor,
		statistics:       statistics,
		maxContentLength: config.DefaultMaxContentLength,
		minWords:         config.DefaultMinWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Process runs the admission stages for one fetched page and returns the
// outcome. Per-host rate metering happened at dispatch in the worker loop;
// the pipeline re-checks the rules but never waits on the limiter again.
func (p *Pipeline) Process(ctx context.Context, rawURL string, resp *fetch.Response) *Result {
	u, err := url.Parse(rawURL)
	if err != nil {
		p.logger.Debug("rejecting unparseable url", "url", rawURL, "error", err)
		return reject(ReasonBadURL)
	}

	// Stage 1: response status, declared size, scope. No dedup side
	// effects yet, so these rejections leave the detector untouched.
	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonBadStatus, "status", resp.StatusCode)
		return reject(ReasonBadStatus)
	}
	if p.tooLarge(resp) {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonTooLarge)
		return reject(ReasonTooLarge)
	}
	if !p.extractor.InScope(rawURL) {
		return reject(ReasonOutOfScope)
	}

	// Stage 2: robots rules. The fetch already happened, but rules may
	// have loaded since this URL was queued.
	p.gate.EnsureLoaded(ctx, u.Scheme, u.Hostname())
	if !p.gate.IsAllowed(rawURL) {
		p.logger.Info("rejecting page disallowed by robots.txt", "url", rawURL)
		return reject(ReasonRobotsDenied)
	}

	// Stage 3: exact duplicate on the raw bytes.
	if p.detector.Seen(resp.Body) {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonExactDuplicate)
		return reject(ReasonExactDuplicate)
	}

	// Stage 4: parse and thin-page check.
	doc, err := extract.ParseDocument(resp.Body, resp.ContentType())
	if err != nil || !doc.HasBody() {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonNoContent, "error", err)
		return reject(ReasonNoContent)
	}
	tokens := doc.Tokens()
	if len(tokens) < p.minWords {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonTooThin, "words", len(tokens))
		return reject(ReasonTooThin)
	}

	// Stage 5: near duplicate on the term-frequency vector.
	if p.detector.SimilarToSeen(doc.TermFrequencies()) {
		p.logger.Debug("rejecting page", "url", rawURL, "reason", ReasonNearDuplicate)
		return reject(ReasonNearDuplicate)
	}

	// Stage 6: acceptance. Fold statistics, then extract discoveries.
	p.statistics.RecordPage(rawURL, tokens)

	links := p.extractor.Links(doc, u)
	if extract.IsRoot(u) {
		links = append(links, p.extractor.SitemapLinks(ctx, u.Hostname())...)
	}

	discovered := make([]string, 0, len(links))
	for _, link := range links {
		if p.extractor.InScope(link) {
			discovered = append(discovered, link)
		}
	}

	p.logger.Debug("page accepted",
		"url", rawURL,
		"words", len(tokens),
		"discovered", len(discovered),
	)

	return &Result{
		Accepted:   true,
		Reason:     ReasonAccepted,
		Discovered: discovered,
		Words:      len(tokens),
	}
}

// tooLarge checks the declared Content-Length first and falls back to the
// actual body size, since the fetcher caps reads one byte past the limit.
func (p *Pipeline) tooLarge(resp *fetch.Response) bool {
	if declared := resp.Header.Get("Content-Length"); declared != "" {
		if n, err := strconv.ParseInt(declared, 10, 64); err == nil && n > p.maxContentLength {
			return true
		}
	}
	return int64(len(resp.Body)) > p.maxContentLength
}
