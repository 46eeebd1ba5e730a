package report

import (
	"encoding/json"
	"io"

	"github.com/louvel/scantext/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs a single report as a JSON object.
func (w *JSONWriter) Write(report *model.ExtractionReport) (int, error) {
	return w.writeJSON(report)
}

// WriteBatch outputs the batch reports wrapped with aggregate counts.
func (w *JSONWriter) WriteBatch(reports []*model.ExtractionReport) (int, error) {
	return w.writeJSON(NewBatchSummary(reports))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// BatchSummary wraps a batch's reports with aggregate outcome counts.
//
// Design decision: We wrap the reports rather than emitting a bare array
// because the counts make the JSON self-describing for tool consumers.
type BatchSummary struct {
	// Total is the number of input files in the batch.
	Total int `json:"total"`

	// OK counts files that produced text.
	OK int `json:"ok"`

	// Skipped counts files rejected before processing.
	Skipped int `json:"skipped"`

	// Failed counts files whose extraction failed.
	Failed int `json:"failed"`

	// Reports holds the per-file reports in input order.
	Reports []*model.ExtractionReport `json:"reports"`
}

// NewBatchSummary counts report outcomes for the given batch.
func NewBatchSummary(reports []*model.ExtractionReport) *BatchSummary {
	s := &BatchSummary{
		Total:   len(reports),
		Reports: reports,
	}
	for _, r := range reports {
		switch r.Status {
		case model.StatusOK:
			s.OK++
		case model.StatusSkipped:
			s.Skipped++
		case model.StatusError:
			s.Failed++
		}
	}
	return s
}
