package politeness

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/fetch"
)

// hostState is the Ready state for one host: its parsed robots group,
// declared sitemaps, effective crawl delay, and the limiter pacing fetches.
// A nil group means allow-all (no robots.txt, or one we failed to load).
type hostState struct {
	group    *robotstxt.Group
	sitemaps []string
	delay    time.Duration
	limiter  *rate.Limiter
}

// Gate is the per-domain politeness gate. It caches robots rules per host,
// answers allow/deny queries, and meters fetch dispatches so the crawl
// never exceeds a host's declared or default crawl delay.
type Gate struct {
	// fetcher retrieves robots.txt files.
	fetcher fetch.Fetcher

	// userAgent is the agent name matched against robots.txt groups.
	userAgent string

	// defaultDelay applies when robots.txt declares no Crawl-delay.
	defaultDelay time.Duration

	// logger for structured logging.
	logger *slog.Logger

	// loads collapses concurrent robots.txt loads for the same host.
	loads singleflight.Group

	// mu guards hosts. Loading happens outside this lock so one host's
	// robots fetch never blocks queries about other hosts.
	mu    sync.RWMutex
	hosts map[string]*hostState
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithUserAgent sets the agent name matched against robots.txt groups.
func WithUserAgent(ua string) GateOption {
	return func(g *Gate) {
		g.userAgent = ua
	}
}

// WithDefaultDelay sets the crawl delay used when robots.txt declares none.
func WithDefaultDelay(d time.Duration) GateOption {
	return func(g *Gate) {
		g.defaultDelay = d
	}
}

// WithLogger sets a custom logger for the gate.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a politeness gate that loads robots.txt through fetcher.
func NewGate(fetcher fetch.Fetcher, opts ...GateOption) *Gate {
	g := &Gate{
		fetcher:      fetcher,
		userAgent:    config.DefaultUserAgent,
		defaultDelay: config.DefaultCrawlDelay,
		hosts:        make(map[string]*hostState),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// EnsureLoaded makes sure the host's robots rules are cached, fetching
// {scheme}://{host}/robots.txt on first touch. Concurrent calls for one
// unready host collapse into a single fetch; every caller returns once the
// host is Ready. Load failures are absorbed into an allow-all rule set.
func (g *Gate) EnsureLoaded(ctx context.Context, scheme, host string) {
	g.mu.RLock()
	_, ready := g.hosts[host]
	g.mu.RUnlock()
	if ready {
		return
	}

	// singleflight keys on host, so two workers racing to load the same
	// host share one fetch while unrelated hosts proceed in parallel.
	_, _, _ = g.loads.Do(host, func() (any, error) {
		g.mu.RLock()
		_, ready := g.hosts[host]
		g.mu.RUnlock()
		if ready {
			return nil, nil
		}

		state := g.load(ctx, scheme, host)

		g.mu.Lock()
		g.hosts[host] = state
		g.mu.Unlock()
		return nil, nil
	})
}

// load fetches and parses robots.txt for one host. Any failure yields the
// allow-all state with the default delay.
func (g *Gate) load(ctx context.Context, scheme, host string) *hostState {
	state := &hostState{
		delay:   g.defaultDelay,
		limiter: rate.NewLimiter(rate.Every(g.defaultDelay), 1),
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	resp, err := g.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		g.logger.Debug("robots.txt fetch failed, allowing all",
			"host", host,
			"error", err,
		)
		return state
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		g.logger.Debug("robots.txt parse failed, allowing all",
			"host", host,
			"error", err,
		)
		return state
	}

	state.group = data.FindGroup(g.userAgent)
	state.sitemaps = data.Sitemaps

	if state.group != nil && state.group.CrawlDelay > 0 {
		state.delay = state.group.CrawlDelay
		state.limiter = rate.NewLimiter(rate.Every(state.delay), 1)
	}

	g.logger.Debug("robots.txt loaded",
		"host", host,
		"status", resp.StatusCode,
		"delay", state.delay,
		"sitemaps", len(state.sitemaps),
	)

	return state
}

// IsAllowed reports whether the cached rules for the URL's host permit its
// path. A host with no cached rules is allowed; the check itself never
// fetches anything.
func (g *Gate) IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	g.mu.RLock()
	state, ok := g.hosts[u.Hostname()]
	g.mu.RUnlock()

	if !ok || state.group == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return state.group.Test(path)
}

// Wait blocks the calling worker until a fetch to host is permitted: robots
// rules are loaded first (the first fetch to a new host pays that cost
// synchronously), then the host's limiter spaces this dispatch at least one
// crawl delay after the previous one. Returns early with the context's
// error on cancellation.
func (g *Gate) Wait(ctx context.Context, scheme, host string) error {
	g.EnsureLoaded(ctx, scheme, host)

	g.mu.RLock()
	state := g.hosts[host]
	g.mu.RUnlock()

	if err := state.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait for %s: %w", host, err)
	}
	return nil
}

// Sitemaps returns the sitemap URLs declared by the host's robots.txt,
// empty for unknown hosts or hosts declaring none.
func (g *Gate) Sitemaps(host string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state, ok := g.hosts[host]
	if !ok {
		return nil
	}
	return state.sitemaps
}

// CrawlDelay returns the effective crawl delay for a host: the robots.txt
// declared value once loaded, the default otherwise.
func (g *Gate) CrawlDelay(host string) time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state, ok := g.hosts[host]
	if !ok {
		return g.defaultDelay
	}
	return state.delay
}
