package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/mkosuda/spinneret/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSubdomains(md, summary)
	w.writeTopTerms(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	rows := [][]string{
		{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", summary.Elapsed.Round(time.Second).String()},
		{"Unique Pages", strconv.Itoa(summary.UniquePages)},
		{"Crawl Rate", fmt.Sprintf("%.1f pages/min", summary.PagesPerMinute)},
	}
	if summary.LongestPage.URL != "" {
		rows = append(rows, []string{
			"Longest Page",
			fmt.Sprintf("`%s` (%d words)", summary.LongestPage.URL, summary.LongestPage.Words),
		})
	}
	if len(summary.Seeds) > 0 {
		rows = append(rows, []string{"Seeds", strings.Join(summary.Seeds, ", ")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSubdomains writes the per-subdomain page counts.
func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Subdomains")
	md.PlainText("")

	if len(summary.Subdomains) == 0 {
		md.PlainText("No pages admitted yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Subdomains))
	for i, sd := range summary.Subdomains {
		rows[i] = []string{"`" + sd.Host + "`", strconv.Itoa(sd.Pages)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Host", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTopTerms writes the most frequent content terms.
func (w *MarkdownWriter) writeTopTerms(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Top Terms")
	md.PlainText("")

	if len(summary.TopTerms) == 0 {
		md.PlainText("No terms recorded yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.TopTerms))
	for i, term := range summary.TopTerms {
		rows[i] = []string{term.Term, strconv.Itoa(term.Count)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Term", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [spinneret](https://github.com/mkosuda/spinneret)*")
}
