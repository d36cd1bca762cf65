package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkosuda/spinneret/internal/config"
)

//go:embed templates/spinneret.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new spinneret configuration file",
		Long: `Initialize creates a new .spinneret configuration file in the current directory.

The generated file includes:
- The default scope policy as a starting point
- Commented examples for every crawl setting
- Documentation for all available options

Examples:
  # Create .spinneret in current directory
  spinneret init

  # Create config file at a specific path
  spinneret init -o myconfig.yaml

  # Force overwrite existing file
  spinneret init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/spinneret.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure crawl settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Seed URLs and the domain scope")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Worker count and per-host crawl delay")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Duplicate and thin-page thresholds")

	return nil
}
