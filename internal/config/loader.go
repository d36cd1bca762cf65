package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".spinneret"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration decodes YAML strings like "1s" or "750ms" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// File represents the structure of the .spinneret configuration file.
// Zero-valued fields are treated as unset and leave the corresponding
// Config default untouched.
type File struct {
	// Seeds are the crawl's starting URLs.
	Seeds []string `yaml:"seeds,omitempty"`

	// Scope replaces the default allow-listed domain suffixes.
	Scope []ScopeRule `yaml:"scope,omitempty"`

	// BannedExtensions replaces the default banned-extension list.
	BannedExtensions []string `yaml:"bannedExtensions,omitempty"`

	// UserAgent overrides the request User-Agent and robots.txt agent name.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Workers overrides the number of concurrent crawl workers.
	Workers int `yaml:"workers,omitempty"`

	// CrawlDelay overrides the default per-host politeness delay.
	CrawlDelay Duration `yaml:"crawlDelay,omitempty"`

	// FetchTimeout overrides the per-request timeout.
	FetchTimeout Duration `yaml:"fetchTimeout,omitempty"`

	// MaxContentLength overrides the content length cap in bytes.
	MaxContentLength int64 `yaml:"maxContentLength,omitempty"`

	// MinWords overrides the thin-page word threshold.
	MinWords int `yaml:"minWords,omitempty"`

	// SimilarityThreshold overrides the near-duplicate cosine cutoff.
	SimilarityThreshold float64 `yaml:"similarityThreshold,omitempty"`

	// ReportInterval overrides the completions between progress reports.
	ReportInterval int `yaml:"reportInterval,omitempty"`

	// TopTerms overrides the number of terms in summary reports.
	TopTerms int `yaml:"topTerms,omitempty"`

	// StoreDir overrides the directory holding the frontier store.
	StoreDir string `yaml:"storeDir,omitempty"`
}

// ApplyTo copies every set (non-zero) field of the file onto cfg.
// CLI flags are applied after this, so the precedence is
// defaults, then config file, then flags.
func (f *File) ApplyTo(cfg *Config) {
	if len(f.Seeds) > 0 {
		cfg.Seeds = f.Seeds
	}
	if len(f.Scope) > 0 {
		cfg.ScopeRules = f.Scope
	}
	if len(f.BannedExtensions) > 0 {
		cfg.BannedExtensions = f.BannedExtensions
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if f.CrawlDelay > 0 {
		cfg.CrawlDelay = time.Duration(f.CrawlDelay)
	}
	if f.FetchTimeout > 0 {
		cfg.FetchTimeout = time.Duration(f.FetchTimeout)
	}
	if f.MaxContentLength > 0 {
		cfg.MaxContentLength = f.MaxContentLength
	}
	if f.MinWords > 0 {
		cfg.MinWords = f.MinWords
	}
	if f.SimilarityThreshold > 0 {
		cfg.SimilarityThreshold = f.SimilarityThreshold
	}
	if f.ReportInterval > 0 {
		cfg.ReportInterval = f.ReportInterval
	}
	if f.TopTerms > 0 {
		cfg.TopTerms = f.TopTerms
	}
	if f.StoreDir != "" {
		cfg.StoreDir = f.StoreDir
	}
}

// LoadConfigFile loads crawl configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this error based on whether the path was explicitly specified by
// the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .spinneret in the current directory
// 3. Look for .spinneret in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
