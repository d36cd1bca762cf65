package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These follow the reference crawl policy for
// the UCI ICS domains where applicable.
const (
	// DefaultUserAgent identifies spinneret in HTTP requests, including the
	// robots.txt group it honors. A descriptive User-Agent lets site
	// operators identify crawler traffic in their logs.
	DefaultUserAgent = "spinneret/1.0 (+https://github.com/mkosuda/spinneret)"

	// DefaultWorkers is the number of concurrent crawl workers. Three keeps
	// pressure on any single host low while still overlapping network waits.
	DefaultWorkers = 3

	// DefaultCrawlDelay is the per-host delay applied when robots.txt does
	// not declare one. One second is conservative and respectful of server
	// resources.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultFetchTimeout is the per-request timeout for page and robots.txt
	// retrieval.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxContentLength is the declared Content-Length above which a
	// response is rejected before processing. Large documents are almost
	// always binary blobs rather than indexable text.
	DefaultMaxContentLength = 2 * 1024 * 1024 // 2MiB

	// DefaultMinWords is the minimum number of visible words a page must
	// contain to be admitted. Thinner pages carry too little text to be
	// worth indexing.
	DefaultMinWords = 200

	// DefaultSimilarityThreshold is the cosine similarity at or above which
	// a page is rejected as a near duplicate of one already admitted.
	DefaultSimilarityThreshold = 0.9

	// DefaultReportInterval is the number of completions between progress
	// summary reports.
	DefaultReportInterval = 25

	// DefaultTopTerms is the number of most-frequent terms included in a
	// summary report.
	DefaultTopTerms = 50

	// DefaultIdlePoll is how long a worker sleeps after finding the frontier
	// empty before polling again.
	DefaultIdlePoll = 200 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "spinneret"

	// StoreFileName is the SQLite file holding frontier state inside the
	// store directory.
	StoreFileName = "frontier.db"
)

// Config holds all configuration options for a crawl.
// It is populated from CLI flags and an optional YAML file, then passed
// through the application via dependency injection rather than global state.
type Config struct {
	// Seeds are the URLs the crawl starts from. On resume they are only
	// used when the persisted frontier turns out to be empty.
	Seeds []string

	// ScopeRules are the allow-listed domain suffixes (optionally with a
	// required path prefix) the crawler may fetch from.
	ScopeRules []ScopeRule

	// BannedExtensions are path extensions (without the dot) that mark a
	// URL as binary or media content and exclude it from the crawl.
	BannedExtensions []string

	// UserAgent is the User-Agent header sent with every request and the
	// agent name matched against robots.txt groups.
	UserAgent string

	// Workers is the number of concurrent crawl workers.
	Workers int

	// CrawlDelay is the default per-host delay when robots.txt does not
	// declare one. Lower values may cause rate limiting or bans.
	CrawlDelay time.Duration

	// FetchTimeout is the timeout for each HTTP request.
	FetchTimeout time.Duration

	// MaxContentLength is the declared Content-Length in bytes above which
	// a response is rejected unprocessed.
	MaxContentLength int64

	// MinWords is the minimum visible word count an admitted page needs.
	MinWords int

	// SimilarityThreshold is the near-duplicate cosine cutoff in (0, 1].
	SimilarityThreshold float64

	// ReportInterval is the number of completions between progress reports.
	ReportInterval int

	// TopTerms is how many terms a summary report lists.
	TopTerms int

	// IdlePoll is the sleep between frontier polls for an idle worker.
	IdlePoll time.Duration

	// StoreDir is the directory holding the frontier's SQLite store.
	// Defaults to the XDG data directory.
	StoreDir string

	// Resume replays the persisted frontier instead of starting from seeds.
	// If the store is empty or absent the crawl falls back to seeding.
	Resume bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .spinneret in the current directory and then in the
	// user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON summary output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown summary output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the final report. When set,
	// the report is written to this file instead of stdout. Directories are
	// created automatically if they don't exist.
	ReportFile string
}

// NewConfig creates a new Config with default values: the reference UCI ICS
// scope policy, three workers, one-second politeness delay, and the frontier
// store under the XDG data directory. Users can override specific values
// after creation.
func NewConfig() *Config {
	return &Config{
		ScopeRules:          DefaultScopeRules(),
		BannedExtensions:    DefaultBannedExtensions(),
		UserAgent:           DefaultUserAgent,
		Workers:             DefaultWorkers,
		CrawlDelay:          DefaultCrawlDelay,
		FetchTimeout:        DefaultFetchTimeout,
		MaxContentLength:    DefaultMaxContentLength,
		MinWords:            DefaultMinWords,
		SimilarityThreshold: DefaultSimilarityThreshold,
		ReportInterval:      DefaultReportInterval,
		TopTerms:            DefaultTopTerms,
		IdlePoll:            DefaultIdlePoll,
		StoreDir:            XDGDataDir(),
	}
}

// StorePath returns the full path of the frontier's SQLite file.
func (c *Config) StorePath() string {
	return filepath.Join(c.StoreDir, StoreFileName)
}

// XDGDataDir returns the XDG data directory for spinneret.
// On Linux: ~/.local/share/spinneret
// On macOS: ~/Library/Application Support/spinneret
// On Windows: %LOCALAPPDATA%\spinneret
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spinneret.
// On Linux: ~/.config/spinneret
// On macOS: ~/Library/Application Support/spinneret
// On Windows: %APPDATA%\spinneret
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns a specific error
// describing the first problem found. It is called once after CLI parsing,
// before the crawl begins.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if len(c.ScopeRules) == 0 {
		return ErrNoScopeRules
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	if c.MaxContentLength <= 0 {
		return ErrInvalidMaxContentLength
	}

	if c.MinWords < 0 {
		return ErrInvalidMinWords
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidSimilarityThreshold
	}

	if c.ReportInterval <= 0 {
		return ErrInvalidReportInterval
	}

	if c.TopTerms <= 0 {
		return ErrInvalidTopTerms
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
