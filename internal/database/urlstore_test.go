package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/model"
)

func TestOpenCreatesStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	want := filepath.Join(dir, config.StoreFileName)
	if store.Path() != want {
		t.Errorf("Path() = %q, want %q", store.Path(), want)
	}
}

func TestOpenReadOnlyMissingStore(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), ReadOnlyOptions())
	if err == nil {
		t.Fatal("Open() with ReadOnlyOptions on empty dir should fail")
	}
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("Open() error = %v, want ErrStoreNotFound", err)
	}
}

func TestPutAndGet(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	url := "https://www.ics.uci.edu/"
	fp := model.Fingerprint(url)

	if err := store.Put(ctx, fp, url); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rec, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec == nil {
		t.Fatal("Get() returned nil for stored record")
	}
	if rec.URL != url {
		t.Errorf("URL = %q, want %q", rec.URL, url)
	}
	if rec.Visited {
		t.Error("new record should not be visited")
	}
}

func TestGetMissingRecord(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), "no-such-fingerprint")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec != nil {
		t.Errorf("Get() = %+v, want nil", rec)
	}
}

func TestPutDuplicateKeepsVisitedState(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	url := "https://www.ics.uci.edu/about"
	fp := model.Fingerprint(url)

	if err := store.Put(ctx, fp, url); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.MarkVisited(ctx, fp); err != nil {
		t.Fatalf("MarkVisited() error = %v", err)
	}

	// Re-inserting must not reset the visited flag.
	if err := store.Put(ctx, fp, url); err != nil {
		t.Fatalf("Put() duplicate error = %v", err)
	}

	rec, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !rec.Visited {
		t.Error("duplicate Put reset the visited flag")
	}
}

func TestMarkVisitedUnknownFingerprint(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	// Unknown fingerprints are a caller bug but must not fail the store.
	if err := store.MarkVisited(context.Background(), "unknown"); err != nil {
		t.Errorf("MarkVisited() unknown fingerprint error = %v", err)
	}
}

func TestAllStreamsEveryRecord(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	urls := []string{
		"https://www.ics.uci.edu/",
		"https://www.cs.uci.edu/",
		"https://www.stat.uci.edu/",
	}
	for _, u := range urls {
		if err := store.Put(ctx, model.Fingerprint(u), u); err != nil {
			t.Fatalf("Put(%q) error = %v", u, err)
		}
	}
	if err := store.MarkVisited(ctx, model.Fingerprint(urls[0])); err != nil {
		t.Fatalf("MarkVisited() error = %v", err)
	}

	seen := make(map[string]bool)
	visited := 0
	err = store.All(ctx, func(rec model.URLRecord) error {
		seen[rec.URL] = true
		if rec.Visited {
			visited++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	if len(seen) != len(urls) {
		t.Errorf("All() streamed %d records, want %d", len(seen), len(urls))
	}
	if visited != 1 {
		t.Errorf("All() streamed %d visited records, want 1", visited)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	urls := []string{
		"https://www.ics.uci.edu/",
		"https://www.ics.uci.edu/about",
	}
	for _, u := range urls {
		if err := store.Put(ctx, model.Fingerprint(u), u); err != nil {
			t.Fatalf("Put(%q) error = %v", u, err)
		}
	}
	if err := store.MarkVisited(ctx, model.Fingerprint(urls[1])); err != nil {
		t.Fatalf("MarkVisited() error = %v", err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 2 {
		t.Errorf("Count() = %d, want 2", total)
	}

	visited, err := store.CountVisited(ctx)
	if err != nil {
		t.Fatalf("CountVisited() error = %v", err)
	}
	if visited != 1 {
		t.Errorf("CountVisited() = %d, want 1", visited)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	url := "https://www.ics.uci.edu/people/"
	fp := model.Fingerprint(url)

	store, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Put(ctx, fp, url); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.MarkVisited(ctx, fp); err != nil {
		t.Fatalf("MarkVisited() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dir, ReadOnlyOptions())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	rec, err := reopened.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if rec == nil || !rec.Visited {
		t.Errorf("record after reopen = %+v, want visited record", rec)
	}
}
