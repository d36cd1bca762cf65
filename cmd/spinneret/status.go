package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/database"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the persisted frontier",
		Long: `Status opens an existing frontier store read-only and prints how many URLs
it holds, how many have been visited, and how many are still pending. No
crawling takes place.

Examples:
  # Inspect the default frontier store
  spinneret status

  # Inspect a store in a specific directory
  spinneret status --store-dir /var/lib/spinneret`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().String("store-dir", "",
		"Directory holding the persisted frontier (default: XDG data directory)")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	storeDir, err := cmd.Flags().GetString("store-dir")
	if err != nil {
		return err
	}
	if storeDir == "" {
		storeDir = config.XDGDataDir()
	}

	store, err := database.Open(storeDir, database.ReadOnlyOptions())
	if err != nil {
		if errors.Is(err, database.ErrStoreNotFound) {
			return fmt.Errorf("no frontier store found in %s (run a crawl first)", storeDir)
		}
		return fmt.Errorf("failed to open frontier store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	visited, err := store.CountVisited(ctx)
	if err != nil {
		return fmt.Errorf("failed to count visited records: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Frontier store: %s\n", store.Path())
	fmt.Fprintf(out, "  URLs known:   %d\n", total)
	fmt.Fprintf(out, "  Visited:      %d\n", visited)
	fmt.Fprintf(out, "  Pending:      %d\n", total-visited)

	return nil
}
