// Package report renders crawl summaries in different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown document for sharing and documentation
//
// Design decision: We separate summary rendering from the summary data
// structure (which lives in the model package) to follow the single
// responsibility principle. This allows adding new output formats without
// modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
