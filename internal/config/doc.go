// Package config provides configuration structures and utilities for
// spinneret. It defines the crawl options (seeds, scope policy, politeness
// and admission thresholds), the YAML config file loader, and report
// generation preferences.
package config
