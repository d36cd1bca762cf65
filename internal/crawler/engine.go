package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/fetch"
	"github.com/mkosuda/spinneret/internal/frontier"
	"github.com/mkosuda/spinneret/internal/model"
	"github.com/mkosuda/spinneret/internal/pipeline"
	"github.com/mkosuda/spinneret/internal/politeness"
	"github.com/mkosuda/spinneret/internal/report"
)

// Engine runs the crawl: a fixed pool of workers pulls URLs from the
// frontier, meters them through the politeness gate, fetches, and hands
// each response to the admission pipeline. Discovered URLs flow back into
// the frontier until every worker finds it empty at the same time.
type Engine struct {
	// frontier supplies URLs and records completions.
	frontier *frontier.Frontier

	// gate meters fetch dispatch per host.
	gate *politeness.Gate

	// fetcher retrieves pages.
	fetcher fetch.Fetcher

	// pipeline decides admission and extracts discoveries.
	pipeline *pipeline.Pipeline

	// progress receives periodic summary snapshots; nil disables them.
	progress report.Writer

	// workers is the pool size.
	workers int

	// reportInterval is the number of completions between progress
	// snapshots.
	reportInterval int

	// topTerms is the number of terms included in summary snapshots.
	topTerms int

	// idlePoll is how long an idle worker sleeps before rechecking the
	// frontier.
	idlePoll time.Duration

	// logger for structured logging.
	logger *slog.Logger

	// idleMu guards idle, the count of workers currently parked on an
	// empty frontier. When it reaches the pool size with nothing queued,
	// the crawl is over.
	idleMu sync.Mutex
	idle   int

	// done is closed exactly once when every worker is idle.
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithReportInterval sets the number of completions between progress
// snapshots.
func WithReportInterval(n int) Option {
	return func(e *Engine) {
		e.reportInterval = n
	}
}

// WithTopTerms sets the number of terms included in summary snapshots.
func WithTopTerms(n int) Option {
	return func(e *Engine) {
		e.topTerms = n
	}
}

// WithIdlePoll sets the sleep interval for workers parked on an empty
// frontier.
func WithIdlePoll(d time.Duration) Option {
	return func(e *Engine) {
		e.idlePoll = d
	}
}

// WithProgressWriter sets the writer that receives periodic summaries.
func WithProgressWriter(w report.Writer) Option {
	return func(e *Engine) {
		e.progress = w
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over the shared frontier, gate, fetcher, and
// pipeline.
func New(f *frontier.Frontier, gate *politeness.Gate, fetcher fetch.Fetcher, p *pipeline.Pipeline, opts ...Option) *Engine {
	e := &Engine{
		frontier:       f,
		gate:           gate,
		fetcher:        fetcher,
		pipeline:       p,
		workers:        config.DefaultWorkers,
		reportInterval: config.DefaultReportInterval,
		topTerms:       config.DefaultTopTerms,
		idlePoll:       config.DefaultIdlePoll,
		done:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run drives the crawl to completion and returns the final summary. It
// returns when the frontier drains (every worker simultaneously idle) or
// when the context is cancelled; either way the summary reflects all work
// completed so far.
func (e *Engine) Run(ctx context.Context) (*model.Summary, error) {
	e.logger.Info("starting crawl", "workers", e.workers, "pending", e.frontier.Pending())

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		worker := i
		g.Go(func() error {
			return e.work(ctx, worker)
		})
	}

	err := g.Wait()
	summary := e.frontier.Summary(e.topTerms)

	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}

	e.logger.Info("crawl finished",
		"pages", summary.UniquePages,
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// work is one worker's loop: dequeue, meter, fetch, process, record.
func (e *Engine) work(ctx context.Context, worker int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		default:
		}

		rawURL, ok := e.frontier.Next()
		if !ok {
			if finished := e.park(ctx); finished {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		if err := e.process(ctx, rawURL); err != nil {
			e.logger.Error("worker stopping", "worker", worker, "url", rawURL, "error", err)
			return err
		}
	}
}

// park registers this worker as idle and sleeps one poll interval. It
// returns true when the crawl is finished: either this worker was the last
// to go idle with nothing queued, or another worker closed done while this
// one slept.
func (e *Engine) park(ctx context.Context) bool {
	e.idleMu.Lock()
	e.idle++
	allIdle := e.idle == e.workers && e.frontier.Pending() == 0
	e.idleMu.Unlock()

	if allIdle {
		e.closeOnce.Do(func() { close(e.done) })
		return true
	}

	defer func() {
		e.idleMu.Lock()
		e.idle--
		e.idleMu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return false
	case <-e.done:
		return true
	case <-time.After(e.idlePoll):
		return false
	}
}

// process handles one dequeued URL end to end. Per-page failures are
// contained: only persistence errors and context cancellation propagate
// and stop the worker.
func (e *Engine) process(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		e.logger.Warn("dropping unparseable frontier url", "url", rawURL, "error", err)
		return e.frontier.MarkInvalid(ctx, rawURL)
	}

	// Dispatch-side politeness: robots load on first touch of the host,
	// then the per-host limiter. This is the only place a URL is metered.
	if err := e.gate.Wait(ctx, u.Scheme, u.Hostname()); err != nil {
		return err
	}

	resp, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Debug("fetch failed", "url", rawURL, "error", err)
		return e.frontier.MarkInvalid(ctx, rawURL)
	}

	result := e.pipeline.Process(ctx, rawURL, resp)

	for _, link := range result.Discovered {
		if err := e.frontier.Add(ctx, link); err != nil {
			return err
		}
	}

	if !result.Accepted {
		return e.frontier.MarkInvalid(ctx, rawURL)
	}

	count, err := e.frontier.MarkComplete(ctx, rawURL)
	if err != nil {
		return err
	}

	if e.progress != nil && e.reportInterval > 0 && count%e.reportInterval == 0 {
		if _, err := e.progress.Write(e.frontier.Summary(e.topTerms)); err != nil {
			e.logger.Warn("progress report failed", "error", err)
		}
	}

	return nil
}
