package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mkosuda/spinneret/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display, and is what the crawler
// prints for both periodic progress reports and the final summary.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full subdomain and term listings. When false,
	// long listings are truncated to keep periodic reports compact.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the full subdomain and term listings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// compactListLimit caps listing length in non-verbose output.
const compactListLimit = 10

// Write renders the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeTotals(&sb, summary)
	w.writeSubdomains(&sb, summary)
	w.writeTopTerms(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:      %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:        %s\n", summary.Elapsed.Round(time.Second)))
	if len(summary.Seeds) > 0 {
		sb.WriteString(fmt.Sprintf("Seeds:          %s\n", strings.Join(summary.Seeds, ", ")))
	}
	sb.WriteString("\n")
}

// writeTotals writes the headline counters.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOTALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Unique pages:   %d\n", summary.UniquePages))
	sb.WriteString(fmt.Sprintf("  Crawl rate:     %.1f pages/min\n", summary.PagesPerMinute))
	if summary.LongestPage.URL != "" {
		sb.WriteString(fmt.Sprintf("  Longest page:   %s (%d words)\n",
			summary.LongestPage.URL, summary.LongestPage.Words))
	}
	sb.WriteString("\n")
}

// writeSubdomains writes the per-subdomain page counts.
func (w *SimpleWriter) writeSubdomains(sb *strings.Builder, summary *model.Summary) {
	if len(summary.Subdomains) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("SUBDOMAINS (%d)\n", len(summary.Subdomains)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	subdomains := summary.Subdomains
	truncated := 0
	if !w.verbose && len(subdomains) > compactListLimit {
		truncated = len(subdomains) - compactListLimit
		subdomains = subdomains[:compactListLimit]
	}

	for _, sd := range subdomains {
		sb.WriteString(fmt.Sprintf("  %-50s %d\n", sd.Host, sd.Pages))
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", truncated))
	}
	sb.WriteString("\n")
}

// writeTopTerms writes the most frequent content terms.
func (w *SimpleWriter) writeTopTerms(sb *strings.Builder, summary *model.Summary) {
	if len(summary.TopTerms) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOP TERMS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	terms := summary.TopTerms
	truncated := 0
	if !w.verbose && len(terms) > compactListLimit {
		truncated = len(terms) - compactListLimit
		terms = terms[:compactListLimit]
	}

	for _, term := range terms {
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", term.Term, term.Count))
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", truncated))
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
