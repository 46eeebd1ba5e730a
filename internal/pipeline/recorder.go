package pipeline

import (
	"context"
	"log/slog"

	"github.com/louvel/scantext/internal/model"
)

// RunRecorder persists finished extraction reports. The history store
// implements it; tests substitute stubs.
type RunRecorder interface {
	Record(ctx context.Context, report *model.ExtractionReport) error
}

// RecordRun persists a report through the recorder, tolerating a nil
// recorder and logging instead of failing when persistence breaks.
// History is bookkeeping: a failed write must never fail the extraction
// that produced the text.
func RecordRun(ctx context.Context, recorder RunRecorder, report *model.ExtractionReport, logger *slog.Logger) {
	if recorder == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := recorder.Record(ctx, report); err != nil {
		logger.Warn("failed to record run history",
			"input", report.InputPath,
			"error", err,
		)
	}
}
