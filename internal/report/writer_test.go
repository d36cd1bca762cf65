package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkosuda/spinneret/internal/model"
)

// createTestSummary builds a summary with sample data for testing.
func createTestSummary() *model.Summary {
	return &model.Summary{
		GeneratedAt:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		Elapsed:        90 * time.Second,
		UniquePages:    42,
		PagesPerMinute: 28.0,
		Subdomains: []model.SubdomainCount{
			{Host: "vision.ics.uci.edu", Pages: 12},
			{Host: "www.ics.uci.edu", Pages: 30},
		},
		LongestPage: model.PageRecord{URL: "https://www.ics.uci.edu/about", Words: 4120},
		TopTerms: []model.TermCount{
			{Term: "research", Count: 120},
			{Term: "computing", Count: 98},
		},
		Seeds: []string{"https://www.ics.uci.edu/"},
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary header and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "CRAWL SUMMARY") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Unique pages:   42") {
			t.Error("expected output to contain unique page count")
		}
		if !strings.Contains(output, "28.0 pages/min") {
			t.Error("expected output to contain crawl rate")
		}
		if !strings.Contains(output, "https://www.ics.uci.edu/about") {
			t.Error("expected output to contain longest page URL")
		}
	})

	t.Run("writes subdomains and terms", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "vision.ics.uci.edu") {
			t.Error("expected output to contain subdomain")
		}
		if !strings.Contains(output, "research") {
			t.Error("expected output to contain top term")
		}
	})

	t.Run("truncates long listings unless verbose", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.TopTerms = nil
		for i := 0; i < compactListLimit+5; i++ {
			summary.TopTerms = append(summary.TopTerms, model.TermCount{
				Term:  strings.Repeat("a", i+1),
				Count: 100 - i,
			})
		}

		var compact bytes.Buffer
		if _, err := NewSimpleWriter(&compact).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(compact.String(), "... and 5 more") {
			t.Error("expected compact output to truncate the term listing")
		}

		var verbose bytes.Buffer
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(verbose.String(), "... and") {
			t.Error("expected verbose output to list every term")
		}
	})

	t.Run("omits empty sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(&model.Summary{GeneratedAt: time.Now()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "SUBDOMAINS") {
			t.Error("expected no subdomain section for an empty summary")
		}
		if strings.Contains(output, "TOP TERMS") {
			t.Error("expected no top-terms section for an empty summary")
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.UniquePages != 42 {
			t.Errorf("UniquePages = %d, want 42", decoded.UniquePages)
		}
		if len(decoded.Subdomains) != 2 {
			t.Errorf("Subdomains length = %d, want 2", len(decoded.Subdomains))
		}
	})

	t.Run("pretty print produces indented output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"uniquePages\"") {
			t.Error("expected indented JSON output")
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	_, err := w.Write(createTestSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "# Crawl Summary") {
		t.Error("expected markdown H1 header")
	}
	if !strings.Contains(output, "## Subdomains") {
		t.Error("expected subdomain section")
	}
	if !strings.Contains(output, "## Top Terms") {
		t.Error("expected top-terms section")
	}
	if !strings.Contains(output, "research") {
		t.Error("expected top-terms table row")
	}
	if !strings.Contains(output, "`www.ics.uci.edu`") {
		t.Error("expected subdomain table row")
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, jsonBuf bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

		n, err := mw.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+jsonBuf.Len() {
			t.Errorf("total bytes = %d, want %d", n, text.Len()+jsonBuf.Len())
		}
		if text.Len() == 0 || jsonBuf.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(
			NewSimpleWriter(failWriter{}),
			NewSimpleWriter(&buf),
		)

		if _, err := mw.Write(createTestSummary()); err == nil {
			t.Fatal("expected an error from the failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected no output after the failing writer")
		}
	})
}

// failWriter always fails, for MultiWriter error propagation tests.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}
