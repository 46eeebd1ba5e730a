package report

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/louvel/scantext/internal/model"
)

// Writer defines the interface for report output.
// Implementations write extraction results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a single extraction report to the configured
	// destination. Returns the number of bytes written and any error
	// encountered.
	Write(report *model.ExtractionReport) (int, error)

	// WriteBatch outputs the reports of a whole batch run, in input order.
	WriteBatch(reports []*model.ExtractionReport) (int, error)
}

// Format identifies a report output format.
type Format string

const (
	// FormatText is the human-readable terminal format.
	FormatText Format = "text"

	// FormatJSON is structured JSON for tool integration.
	FormatJSON Format = "json"

	// FormatMarkdown is a Markdown document for sharing.
	FormatMarkdown Format = "markdown"
)

// FormatForPath returns the report format implied by a file extension.
// ".json" selects JSON and ".md" or ".markdown" selects Markdown;
// everything else falls back to the text format.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// NewWriter creates a writer for the given format.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ExtractionReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch reports to all configured Writers.
func (m *MultiWriter) WriteBatch(reports []*model.ExtractionReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
