// Package main provides the entry point for the spinneret CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spinneret.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spinneret",
		Short: "Polite, domain-restricted web crawler",
		Long: `Spinneret is a polite, domain-restricted web crawler.

It crawls an allow-listed set of domains starting from seed URLs, honoring
robots.txt rules and per-host crawl delays. The URL frontier is persisted to
disk, so an interrupted crawl can be resumed with --resume. Duplicate and
low-value pages are filtered out, and the crawl produces a statistics report
covering unique pages, subdomains, the longest page, and the most frequent
content terms.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
