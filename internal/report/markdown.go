package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/louvel/scantext/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
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

// Write outputs a single report as a Markdown document.
func (w *MarkdownWriter) Write(report *model.ExtractionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Extraction Report")
	md.PlainText("")
	w.writeDetails(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a batch as a Markdown document with one section
// per input file.
func (w *MarkdownWriter) WriteBatch(reports []*model.ExtractionReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Batch Extraction Report")
	md.PlainText("")
	w.writeBatchSummary(md, reports)

	for _, report := range reports {
		md.H2(report.BaseName())
		md.PlainText("")
		w.writeDetails(md, report)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeBatchSummary writes the outcome counts, the file overview table,
// and an outcome distribution chart when anything went wrong.
func (w *MarkdownWriter) writeBatchSummary(md *markdown.Markdown, reports []*model.ExtractionReport) {
	summary := NewBatchSummary(reports)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ Extracted", strconv.Itoa(summary.OK)},
			{"⚠️ Skipped", strconv.Itoa(summary.Skipped)},
			{"❌ Failed", strconv.Itoa(summary.Failed)},
			{"**Total**", "**" + strconv.Itoa(summary.Total) + "**"},
		},
	})
	md.PlainText("")

	rows := make([][]string, len(reports))
	for i, r := range reports {
		rows[i] = []string{
			truncateString(r.BaseName(), 40),
			w.statusText(r),
			valueOrDash(r.Engine),
			strconv.Itoa(r.CharCount),
			fmt.Sprintf("%.3f", r.Seconds),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Engine", "Characters", "Seconds"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Skipped > 0 || summary.Failed > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *BatchSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Batch Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if summary.OK > 0 {
		chart.LabelAndIntValue("Extracted", uint64(summary.OK))
	}
	if summary.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(summary.Skipped))
	}
	if summary.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDetails writes one report's facts, warnings, metadata, and text.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, report *model.ExtractionReport) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", "`" + report.InputPath + "`"},
			{"Kind", valueOrDash(report.KindName)},
			{"Status", w.statusText(report)},
			{"Engine", valueOrDash(report.Engine)},
			{"Pages", w.pagesText(report)},
			{"Language", valueOrDash(report.Language)},
			{"Characters", strconv.Itoa(report.CharCount)},
			{"Duration", fmt.Sprintf("%.3fs", report.Seconds)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
	w.writeStepErrors(md, report)
	w.writeMetadata(md, report)
	w.writeText(md, report)
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.ExtractionReport) string {
	switch report.Status {
	case model.StatusError:
		return "❌ Error"
	case model.StatusSkipped:
		return "⚠️ Skipped"
	default:
		return "✅ Complete"
	}
}

// pagesText renders the page facts for the report's extraction path.
func (w *MarkdownWriter) pagesText(report *model.ExtractionReport) string {
	switch {
	case report.PageCount == 0:
		return "-"
	case len(report.PagesProcessed) > 0:
		return fmt.Sprintf("%d of %d rendered", len(report.PagesProcessed), report.PageCount)
	default:
		return strconv.Itoa(report.PageCount)
	}
}

// writeAlert writes an alert matching the report outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ExtractionReport) {
	switch {
	case report.Status == model.StatusError:
		md.Cautionf("Extraction failed: %s", report.ErrorMessage)
		md.PlainText("")
	case report.Status == model.StatusSkipped:
		md.Warningf("Input skipped: %s", report.ErrorMessage)
		md.PlainText("")
	case len(report.StepErrors) > 0:
		md.Importantf(
			"%d non-fatal problem(s) were recorded during processing.",
			len(report.StepErrors),
		)
		md.PlainText("")
	}
}

// writeStepErrors lists non-fatal step problems.
func (w *MarkdownWriter) writeStepErrors(md *markdown.Markdown, report *model.ExtractionReport) {
	if len(report.StepErrors) == 0 {
		return
	}

	md.PlainText("### Warnings")
	md.PlainText("")

	items := make([]string, len(report.StepErrors))
	for i, se := range report.StepErrors {
		items[i] = fmt.Sprintf("`%s`: %s", se.Step, se.Message)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeMetadata writes the image facts table when present.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, report *model.ExtractionReport) {
	meta := report.Metadata
	if meta == nil {
		return
	}

	md.PlainText("### Image")
	md.PlainText("")

	rows := [][]string{
		{"Format", valueOrDash(meta.Format)},
		{"Dimensions", fmt.Sprintf("%d x %d", meta.Width, meta.Height)},
	}
	if camera := strings.TrimSpace(meta.CameraMake + " " + meta.CameraModel); camera != "" {
		rows = append(rows, []string{"Camera", camera})
	}
	if meta.Software != "" {
		rows = append(rows, []string{"Software", meta.Software})
	}
	if meta.CapturedAt != "" {
		rows = append(rows, []string{"Captured", meta.CapturedAt})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeText writes the extracted text as a fenced block.
func (w *MarkdownWriter) writeText(md *markdown.Markdown, report *model.ExtractionReport) {
	if report.Status != model.StatusOK {
		return
	}

	md.PlainText("### Extracted Text")
	md.PlainText("")

	if report.Text == "" {
		md.PlainText("No text was extracted.")
		md.PlainText("")
		return
	}

	md.CodeBlocks(markdown.SyntaxHighlightText, report.Text)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [scantext](https://github.com/louvel/scantext)*")
}

// valueOrDash returns the value, or a dash placeholder when empty.
func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
