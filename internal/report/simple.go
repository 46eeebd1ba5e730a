package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/louvel/scantext/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
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

// Write outputs a single report in human-readable format.
func (w *SimpleWriter) Write(report *model.ExtractionReport) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "EXTRACTION REPORT")
	w.writeDetails(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs the batch reports in human-readable format.
func (w *SimpleWriter) WriteBatch(reports []*model.ExtractionReport) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "BATCH EXTRACTION REPORT")
	w.writeBatchSummary(&sb, reports)
	w.writeFileList(&sb, reports)

	if w.verbose {
		for _, report := range reports {
			w.writeRule(&sb, report.BaseName())
			w.writeDetails(&sb, report)
		}
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes the double-ruled report title.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	pad := (70 - len(title)) / 2
	if pad < 0 {
		pad = 0
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeRule writes a single-ruled section header.
func (w *SimpleWriter) writeRule(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeDetails writes one report's facts.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, report *model.ExtractionReport) {
	sb.WriteString(fmt.Sprintf("Input:       %s\n", report.InputPath))
	sb.WriteString(fmt.Sprintf("Kind:        %s\n", valueOrDash(report.KindName)))
	sb.WriteString(fmt.Sprintf("Status:      %s\n", w.statusText(report)))
	sb.WriteString(fmt.Sprintf("Engine:      %s\n", valueOrDash(report.Engine)))

	if report.PageCount > 0 {
		if len(report.PagesProcessed) > 0 {
			sb.WriteString(fmt.Sprintf("Pages:       %d of %d rendered\n",
				len(report.PagesProcessed), report.PageCount))
		} else {
			sb.WriteString(fmt.Sprintf("Pages:       %d\n", report.PageCount))
		}
	}

	if report.Language != "" {
		sb.WriteString(fmt.Sprintf("Language:    %s\n", report.Language))
	}
	if report.Engine == model.EngineOCR {
		sb.WriteString(fmt.Sprintf("Zoom:        %.1f\n", report.Zoom))
		if report.MeanConfidence > 0 {
			sb.WriteString(fmt.Sprintf("Confidence:  %.0f%%\n", report.MeanConfidence*100))
		}
	}

	sb.WriteString(fmt.Sprintf("Characters:  %d\n", report.CharCount))
	sb.WriteString(fmt.Sprintf("Duration:    %.3fs\n", report.Seconds))

	w.writeStepErrors(sb, report)
	if w.verbose {
		w.writeMetadata(sb, report)
	}
	sb.WriteString("\n")
}

// statusText returns the status line for the report state.
func (w *SimpleWriter) statusText(report *model.ExtractionReport) string {
	switch report.Status {
	case model.StatusError:
		return "ERROR - " + report.ErrorMessage
	case model.StatusSkipped:
		return "SKIPPED - " + report.ErrorMessage
	default:
		return "Complete"
	}
}

// writeStepErrors writes the non-fatal problems collected during the run.
func (w *SimpleWriter) writeStepErrors(sb *strings.Builder, report *model.ExtractionReport) {
	if len(report.StepErrors) == 0 {
		return
	}

	sb.WriteString("Warnings:\n")
	for _, se := range report.StepErrors {
		sb.WriteString(fmt.Sprintf("  [!] %s: %s\n", se.Step, se.Message))
	}
}

// writeMetadata writes the image facts when present.
func (w *SimpleWriter) writeMetadata(sb *strings.Builder, report *model.ExtractionReport) {
	meta := report.Metadata
	if meta == nil {
		return
	}

	sb.WriteString("Image:\n")
	sb.WriteString(fmt.Sprintf("  Format:      %s\n", valueOrDash(meta.Format)))
	sb.WriteString(fmt.Sprintf("  Dimensions:  %d x %d\n", meta.Width, meta.Height))
	if camera := strings.TrimSpace(meta.CameraMake + " " + meta.CameraModel); camera != "" {
		sb.WriteString(fmt.Sprintf("  Camera:      %s\n", camera))
	}
	if meta.Software != "" {
		sb.WriteString(fmt.Sprintf("  Software:    %s\n", meta.Software))
	}
	if meta.CapturedAt != "" {
		sb.WriteString(fmt.Sprintf("  Captured:    %s\n", meta.CapturedAt))
	}
}

// writeBatchSummary writes the outcome counts for a batch.
func (w *SimpleWriter) writeBatchSummary(sb *strings.Builder, reports []*model.ExtractionReport) {
	summary := NewBatchSummary(reports)

	sb.WriteString(fmt.Sprintf("Files:       %d\n", summary.Total))
	sb.WriteString(fmt.Sprintf("Extracted:   %d\n", summary.OK))
	sb.WriteString(fmt.Sprintf("Skipped:     %d\n", summary.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:      %d\n", summary.Failed))
	sb.WriteString("\n")
}

// writeFileList writes one line per batch file with its outcome.
func (w *SimpleWriter) writeFileList(sb *strings.Builder, reports []*model.ExtractionReport) {
	w.writeRule(sb, "FILES")

	for _, report := range reports {
		switch report.Status {
		case model.StatusSkipped:
			sb.WriteString(fmt.Sprintf("  [-] %s: %s\n",
				report.BaseName(), truncateString(report.ErrorMessage, 60)))
		case model.StatusError:
			sb.WriteString(fmt.Sprintf("  [!] %s: %s\n",
				report.BaseName(), truncateString(report.ErrorMessage, 60)))
		default:
			sb.WriteString(fmt.Sprintf("  [+] %s (%s, %d chars, %.3fs)\n",
				report.BaseName(), valueOrDash(report.Engine), report.CharCount, report.Seconds))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
