package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/louvel/scantext/internal/model"
)

// ErrNoValidInput is returned when every file in a batch was skipped
// during the upfront validation pass.
var ErrNoValidInput = errors.New("no valid input files")

// BatchRunner processes multiple input files through fresh pipeline
// instances, strictly one at a time and in input order.
//
// Design decision: Batches run sequentially rather than concurrently
// because the OCR engine is the bottleneck and saturates the CPU on a
// single document; interleaving documents only scrambles progress
// output. Combined output also has to follow input order anyway.
type BatchRunner struct {
	// pipelineFactory creates a new pipeline for each input.
	// A factory ensures state never leaks between files.
	pipelineFactory func() *Pipeline

	// reportFactory creates the report for one input path, letting the
	// caller stamp extraction parameters on it.
	reportFactory func(path string) *model.ExtractionReport

	// recorder persists finished reports, nil disables history.
	recorder RunRecorder

	// progress is called after each processed file.
	progress func(report *model.ExtractionReport, index, total int)

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// WithBatchReportFactory sets the factory used to create per-input
// reports. Defaults to model.NewExtractionReport.
func WithBatchReportFactory(f func(path string) *model.ExtractionReport) BatchOption {
	return func(b *BatchRunner) {
		if f != nil {
			b.reportFactory = f
		}
	}
}

// WithBatchRecorder sets the recorder that persists finished reports.
func WithBatchRecorder(recorder RunRecorder) BatchOption {
	return func(b *BatchRunner) {
		b.recorder = recorder
	}
}

// WithBatchProgress sets a callback invoked after each processed file
// with the report, its index among the valid files, and the valid total.
func WithBatchProgress(f func(report *model.ExtractionReport, index, total int)) BatchOption {
	return func(b *BatchRunner) {
		b.progress = f
	}
}

// NewBatchRunner creates a new BatchRunner.
//
// The pipelineFactory function is called for each input to create a
// fresh pipeline instance, so pipeline state never leaks between files.
func NewBatchRunner(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		pipelineFactory: pipelineFactory,
		reportFactory:   model.NewExtractionReport,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run processes the given paths in order and returns one report per
// path, in the same order.
//
// Missing and unsupported files are skipped with a warning during an
// upfront validation pass; they yield skipped reports but do not stop
// the batch. Extraction failures are recorded on the failed file's
// report and the batch continues. ErrNoValidInput is returned when the
// validation pass rejects every file.
func (b *BatchRunner) Run(ctx context.Context, paths []string) ([]*model.ExtractionReport, error) {
	b.logger.Info("starting batch", "total_inputs", len(paths))
	start := time.Now()

	reports := make([]*model.ExtractionReport, 0, len(paths))
	valid := 0
	for _, path := range paths {
		report := b.reportFactory(path)
		if reason := validateInput(path); reason != nil {
			b.logger.Warn("skipping input", "input", path, "reason", reason)
			report.Skip(reason)
			report.Finish()
			RecordRun(ctx, b.recorder, report, b.logger)
		} else {
			valid++
		}
		reports = append(reports, report)
	}
	if valid == 0 {
		return reports, ErrNoValidInput
	}

	processed := 0
	for _, report := range reports {
		if report.Status == model.StatusSkipped {
			continue
		}

		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		processed++
		b.logger.Info("processing input",
			"input", report.InputPath,
			"index", processed,
			"total", valid,
		)

		pipeline := b.pipelineFactory()
		_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report
		RecordRun(ctx, b.recorder, report, b.logger)

		if b.progress != nil {
			b.progress(report, processed, valid)
		}
	}

	b.logger.Info("batch complete",
		"total_inputs", len(paths),
		"processed", processed,
		"elapsed", time.Since(start),
	)
	return reports, nil
}

// validateInput returns the reason a path cannot be processed, or nil.
func validateInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !model.IsSupportedFile(path) {
		return fmt.Errorf("%s: %w", path, model.ErrUnsupportedFormat)
	}
	return nil
}
