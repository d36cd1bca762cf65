package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mkosuda/spinneret/internal/database"
)

// TestNewStatusCmd tests the status command creation.
func TestNewStatusCmd(t *testing.T) {
	t.Parallel()

	cmd := NewStatusCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "status" {
			t.Errorf("expected use 'status', got %q", cmd.Use)
		}
	})

	t.Run("has store-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("store-dir") == nil {
			t.Fatal("expected store-dir flag")
		}
	})
}

// TestRunStatusCmd tests the status command execution.
func TestRunStatusCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports store totals", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		ctx := context.Background()
		records := map[string]string{
			"fp1": "https://www.ics.uci.edu/",
			"fp2": "https://www.ics.uci.edu/about",
			"fp3": "https://www.ics.uci.edu/research",
		}
		for fp, u := range records {
			if err := store.Put(ctx, fp, u); err != nil {
				t.Fatalf("failed to put record: %v", err)
			}
		}
		if err := store.MarkVisited(ctx, "fp1"); err != nil {
			t.Fatalf("failed to mark visited: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}

		var buf bytes.Buffer
		cmd := NewStatusCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--store-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "URLs known:   3") {
			t.Errorf("expected 3 known URLs, got output:\n%s", output)
		}
		if !strings.Contains(output, "Visited:      1") {
			t.Errorf("expected 1 visited URL, got output:\n%s", output)
		}
		if !strings.Contains(output, "Pending:      2") {
			t.Errorf("expected 2 pending URLs, got output:\n%s", output)
		}
	})

	t.Run("fails when no store exists", func(t *testing.T) {
		t.Parallel()

		cmd := NewStatusCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--store-dir", t.TempDir()})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing store")
		}
		if !strings.Contains(err.Error(), "no frontier store") {
			t.Errorf("expected 'no frontier store' error, got %v", err)
		}
	})
}
