package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/crawler"
	"github.com/mkosuda/spinneret/internal/database"
	"github.com/mkosuda/spinneret/internal/dedup"
	"github.com/mkosuda/spinneret/internal/extract"
	"github.com/mkosuda/spinneret/internal/fetch"
	"github.com/mkosuda/spinneret/internal/frontier"
	"github.com/mkosuda/spinneret/internal/log"
	"github.com/mkosuda/spinneret/internal/model"
	"github.com/mkosuda/spinneret/internal/pipeline"
	"github.com/mkosuda/spinneret/internal/politeness"
	"github.com/mkosuda/spinneret/internal/report"
	"github.com/mkosuda/spinneret/internal/stats"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-urls...]",
		Short: "Crawl the configured domain scope starting from seed URLs",
		Long: `Crawl fetches pages inside the configured domain scope, starting from the
seed URLs given as arguments or in the configuration file.

The crawler honors robots.txt rules and per-host crawl delays, skips
duplicate and low-value pages, and persists the URL frontier to disk so an
interrupted crawl can be picked up again with --resume.

Examples:
  # Crawl starting from a seed URL
  spinneret crawl https://www.ics.uci.edu/

  # Resume an interrupted crawl
  spinneret crawl --resume

  # Crawl with five workers and a JSON report written to a file
  spinneret crawl -w 5 --json -o report.json https://www.ics.uci.edu/

  # Use a custom configuration file
  spinneret crawl -c myconfig.yaml`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Per-host delay when robots.txt declares no crawl delay")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header and robots.txt agent name")
	cmd.Flags().Int64("max-content", config.DefaultMaxContentLength,
		"Response size cap in bytes")
	cmd.Flags().Int("min-words", config.DefaultMinWords,
		"Minimum visible word count for an admitted page")
	cmd.Flags().Float64("threshold", config.DefaultSimilarityThreshold,
		"Near-duplicate cosine similarity cutoff in (0, 1]")
	cmd.Flags().Int("report-interval", config.DefaultReportInterval,
		"Completions between progress reports")
	cmd.Flags().Int("top-terms", config.DefaultTopTerms,
		"Number of terms listed in summary reports")

	// Frontier store flags
	cmd.Flags().String("store-dir", "",
		"Directory holding the persisted frontier (default: XDG data directory)")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume from the persisted frontier instead of starting fresh")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .spinneret in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the final report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewCrawlLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the optional YAML file and cobra flags.
// Precedence is defaults, then config file, then explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	// Load the config file if one exists. An explicitly given path must
	// exist; the default search locations may be absent.
	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	// Flags override file values only when the user set them.
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments override file seeds.
	if len(args) > 0 {
		cfg.Seeds = args
	}

	return cfg, nil
}

// applyFlags copies every explicitly set flag value onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.FetchTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("max-content") {
		if cfg.MaxContentLength, err = flags.GetInt64("max-content"); err != nil {
			return err
		}
	}
	if flags.Changed("min-words") {
		if cfg.MinWords, err = flags.GetInt("min-words"); err != nil {
			return err
		}
	}
	if flags.Changed("threshold") {
		if cfg.SimilarityThreshold, err = flags.GetFloat64("threshold"); err != nil {
			return err
		}
	}
	if flags.Changed("report-interval") {
		if cfg.ReportInterval, err = flags.GetInt("report-interval"); err != nil {
			return err
		}
	}
	if flags.Changed("top-terms") {
		if cfg.TopTerms, err = flags.GetInt("top-terms"); err != nil {
			return err
		}
	}
	if flags.Changed("store-dir") {
		if cfg.StoreDir, err = flags.GetString("store-dir"); err != nil {
			return err
		}
	}

	if cfg.Resume, err = flags.GetBool("resume"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}

	return nil
}

// runCrawl wires the crawl stack together and runs it to completion.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"workers", cfg.Workers,
		"resume", cfg.Resume,
		"storeDir", cfg.StoreDir,
	)

	// A fresh crawl discards any previously persisted frontier.
	if !cfg.Resume {
		if err := os.Remove(cfg.StorePath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear frontier store: %w", err)
		}
	}

	store, err := database.Open(cfg.StoreDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open frontier store: %w", err)
	}
	defer store.Close()
	logger.Info("frontier store opened", "path", store.Path())

	policy := config.NewScopePolicy(cfg.ScopeRules, cfg.BannedExtensions)
	statistics := stats.New()
	statistics.SetSeeds(cfg.Seeds)

	fetcher := fetch.NewClient(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBodySize(cfg.MaxContentLength),
	)

	gate := politeness.NewGate(fetcher,
		politeness.WithUserAgent(cfg.UserAgent),
		politeness.WithDefaultDelay(cfg.CrawlDelay),
		politeness.WithLogger(logger),
	)

	extractor := extract.NewExtractor(policy, gate, fetcher,
		extract.WithLogger(logger))
	detector := dedup.NewDetector(
		dedup.WithThreshold(cfg.SimilarityThreshold))

	f := frontier.New(store, policy, statistics,
		frontier.WithLogger(logger))
	if err := f.Initialize(ctx, cfg.Seeds, cfg.Resume); err != nil {
		return fmt.Errorf("failed to initialize frontier: %w", err)
	}

	p := pipeline.New(gate, detector, extractor, statistics,
		pipeline.WithMaxContentLength(cfg.MaxContentLength),
		pipeline.WithMinWords(cfg.MinWords),
		pipeline.WithLogger(logger),
	)

	engine := crawler.New(f, gate, fetcher, p,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithReportInterval(cfg.ReportInterval),
		crawler.WithTopTerms(cfg.TopTerms),
		crawler.WithIdlePoll(cfg.IdlePoll),
		crawler.WithProgressWriter(report.NewSimpleWriter(os.Stderr)),
		crawler.WithLogger(logger),
	)

	fmt.Printf("Crawling %d seed(s) with %d worker(s)...\n", len(cfg.Seeds), cfg.Workers)
	startTime := time.Now()

	summary, runErr := engine.Run(ctx)

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl finished in %s\n\n", elapsed.Round(time.Millisecond))

	// The summary reflects all completed work even after an interrupt.
	if err := outputSummary(cfg, summary); err != nil {
		logger.Error("report failed", "error", err)
		if runErr == nil {
			return err
		}
	}

	return runErr
}

// outputSummary writes the final summary in the requested format.
func outputSummary(cfg *config.Config, summary *model.Summary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary)
	return err
}
