package frontier

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/database"
	"github.com/mkosuda/spinneret/internal/model"
	"github.com/mkosuda/spinneret/internal/stats"
)

// storeAttempts is how many times a durable-store write is tried before
// the error surfaces to the caller. SQLite reports transient lock
// contention as errors, and a brief retry absorbs it.
const storeAttempts = 3

// storeRetryDelay is the pause between store write attempts.
const storeRetryDelay = 50 * time.Millisecond

// Frontier is the persistent crawl queue. All four read-modify-write
// operations (Add, MarkComplete, MarkInvalid, and the Initialize replay)
// plus the Next dequeue run under a single mutex, so no two workers can
// observe the same fingerprint as new or receive the same URL.
type Frontier struct {
	mu sync.Mutex

	// records maps fingerprint to URL record, mirroring the store.
	records map[string]*model.URLRecord

	// queue holds normalized URLs awaiting fetch in FIFO discovery order.
	queue []string

	// store is the durable mirror written through on every mutation.
	store *database.URLStore

	// policy decides which replayed URLs are still worth enqueueing.
	policy *config.ScopePolicy

	// statistics receives page and subdomain counts on completion.
	statistics *stats.Statistics

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithLogger sets a custom logger for the frontier.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// New creates a Frontier over the given durable store, scope policy, and
// statistics instance. Call Initialize before handing it to workers.
func New(store *database.URLStore, policy *config.ScopePolicy, statistics *stats.Statistics, opts ...Option) *Frontier {
	f := &Frontier{
		records:    make(map[string]*model.URLRecord),
		store:      store,
		policy:     policy,
		statistics: statistics,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Initialize populates the frontier. When resume is true and the durable
// store holds records, they are replayed into the map and every unvisited,
// still-in-scope URL is re-enqueued; otherwise the seeds are added.
// Resuming over an empty store falls back to seeding, so exactly one of
// {resume, seed} populates the queue.
func (f *Frontier) Initialize(ctx context.Context, seeds []string, resume bool) error {
	if resume {
		replayed, err := f.replay(ctx)
		if err != nil {
			return fmt.Errorf("frontier replay: %w", err)
		}
		if replayed > 0 {
			return nil
		}
		f.logger.Info("persisted frontier empty, starting from seeds")
	}

	for _, seed := range seeds {
		if err := f.Add(ctx, seed); err != nil {
			return fmt.Errorf("seeding frontier: %w", err)
		}
	}
	return nil
}

// replay loads every stored record into the map and re-enqueues the
// pending in-scope ones. Returns the number of records replayed.
func (f *Frontier) replay(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	pending := 0
	err := f.store.All(ctx, func(rec model.URLRecord) error {
		total++
		r := rec
		f.records[r.Fingerprint] = &r
		if !r.Visited && f.inScope(r.URL) {
			f.queue = append(f.queue, r.URL)
			pending++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if total > 0 {
		f.logger.Info("frontier resumed from persisted state",
			"records", total,
			"pending", pending,
		)
	}
	return total, nil
}

// Add normalizes the URL and, if its fingerprint is unseen, records it as
// unvisited in the store and the map and appends it to the queue.
// Duplicate adds are no-ops. The store write precedes the in-memory insert
// and the enqueue; if it fails, the frontier is unchanged.
func (f *Frontier) Add(ctx context.Context, rawURL string) error {
	normalized, err := model.NormalizeURL(rawURL)
	if err != nil {
		return fmt.Errorf("add url: %w", err)
	}
	fingerprint := model.Fingerprint(normalized)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, seen := f.records[fingerprint]; seen {
		return nil
	}

	if err := f.putDurably(ctx, fingerprint, normalized); err != nil {
		return fmt.Errorf("add url %s: %w", normalized, err)
	}

	f.records[fingerprint] = &model.URLRecord{
		Fingerprint: fingerprint,
		URL:         normalized,
		Visited:     false,
	}
	f.queue = append(f.queue, normalized)
	return nil
}

// Next dequeues one URL in FIFO order. It never blocks: the second return
// is false when the queue is empty and the caller decides whether to back
// off or terminate.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}

	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, true
}

// MarkComplete sets the URL's record to visited, durably and in memory,
// and folds the completion into the crawl statistics. It returns the
// running completion count. An unseen fingerprint is a caller bug: it is
// logged as a consistency warning and the operation is still applied.
func (f *Frontier) MarkComplete(ctx context.Context, rawURL string) (int, error) {
	if err := f.markVisited(ctx, rawURL, "complete"); err != nil {
		return 0, err
	}
	return f.statistics.RecordVisit(rawURL), nil
}

// MarkInvalid sets the URL's record to visited, durably and in memory,
// with no statistics side effects. Used for URLs rejected after fetch.
func (f *Frontier) MarkInvalid(ctx context.Context, rawURL string) error {
	return f.markVisited(ctx, rawURL, "invalid")
}

// markVisited is the shared visited-flag transition. The flag never
// reverts: records already visited stay visited.
func (f *Frontier) markVisited(ctx context.Context, rawURL, reason string) error {
	normalized, err := model.NormalizeURL(rawURL)
	if err != nil {
		return fmt.Errorf("mark %s: %w", reason, err)
	}
	fingerprint := model.Fingerprint(normalized)

	f.mu.Lock()
	defer f.mu.Unlock()

	rec, seen := f.records[fingerprint]
	if !seen {
		f.logger.Warn("marking url never added to frontier",
			"url", normalized,
			"reason", reason,
		)
		rec = &model.URLRecord{Fingerprint: fingerprint, URL: normalized}
		if err := f.putDurably(ctx, fingerprint, normalized); err != nil {
			return fmt.Errorf("mark %s %s: %w", reason, normalized, err)
		}
		f.records[fingerprint] = rec
	}

	if err := f.markVisitedDurably(ctx, fingerprint); err != nil {
		return fmt.Errorf("mark %s %s: %w", reason, normalized, err)
	}
	rec.Visited = true
	return nil
}

// Pending returns the number of queued URLs.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Known returns the number of fingerprints ever discovered.
func (f *Frontier) Known() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// Summary returns a point-in-time snapshot of the crawl statistics with
// the topN most frequent terms.
func (f *Frontier) Summary(topN int) *model.Summary {
	return f.statistics.Snapshot(topN)
}

// putDurably writes a new record through to the store, retrying transient
// failures a bounded number of times. Callers hold f.mu.
func (f *Frontier) putDurably(ctx context.Context, fingerprint, normalized string) error {
	return f.retryStore(ctx, func() error {
		return f.store.Put(ctx, fingerprint, normalized)
	})
}

// markVisitedDurably flips the stored visited flag with the same bounded
// retry. Callers hold f.mu.
func (f *Frontier) markVisitedDurably(ctx context.Context, fingerprint string) error {
	return f.retryStore(ctx, func() error {
		return f.store.MarkVisited(ctx, fingerprint)
	})
}

// retryStore runs a store write, retrying up to storeAttempts times.
// A persistent failure is fatal to the operation: the error propagates and
// the caller must not assume the mutation happened.
func (f *Frontier) retryStore(ctx context.Context, write func() error) error {
	var err error
	for attempt := 1; attempt <= storeAttempts; attempt++ {
		if err = write(); err == nil {
			return nil
		}
		if attempt < storeAttempts {
			f.logger.Debug("store write failed, retrying",
				"attempt", attempt,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(storeRetryDelay):
			}
		}
	}
	return err
}

// inScope is the replay validity check: http/https scheme and a host/path
// inside the configured scope policy. Robots rules are not consulted here;
// no host state exists yet at startup.
func (f *Frontier) inScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return f.policy.Contains(u)
}
