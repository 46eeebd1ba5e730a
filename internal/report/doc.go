// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - TextWriter: Plain extracted text, the tool's primary output
//   - SimpleWriter: Human-readable run summaries for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown documents for documentation and sharing
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
