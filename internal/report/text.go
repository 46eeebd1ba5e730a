package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/louvel/scantext/internal/model"
)

// CombineText assembles the combined output of a batch run: one block
// per file, headed by the file's base name, with a blank line between
// blocks. Failed files contribute an ERROR block so their position in
// the batch stays visible; skipped files contribute nothing.
func CombineText(reports []*model.ExtractionReport) string {
	blocks := make([]string, 0, len(reports))
	for _, r := range reports {
		switch r.Status {
		case model.StatusSkipped:
			continue
		case model.StatusError:
			blocks = append(blocks, fmt.Sprintf("-- %s --\nERROR: %s", r.BaseName(), r.ErrorMessage))
		default:
			blocks = append(blocks, fmt.Sprintf("-- %s --\n%s", r.BaseName(), r.Text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// TextWriter outputs only the extracted text. This is the tool's primary
// deliverable; run details are dropped.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report's extracted text.
func (w *TextWriter) Write(report *model.ExtractionReport) (int, error) {
	return w.writeText(report.Text)
}

// WriteBatch outputs the combined batch text.
func (w *TextWriter) WriteBatch(reports []*model.ExtractionReport) (int, error) {
	return w.writeText(CombineText(reports))
}

// writeText writes the text with a trailing newline so terminal output
// and concatenated files stay readable.
func (w *TextWriter) writeText(text string) (int, error) {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return w.output.Write([]byte(text))
}
