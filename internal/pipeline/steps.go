package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/correct"
	"github.com/louvel/scantext/internal/extract"
	"github.com/louvel/scantext/internal/model"
	"github.com/louvel/scantext/internal/ocr"
	"github.com/louvel/scantext/internal/textclean"
)

// ProbeStep validates the input file and records its basic facts: size,
// document kind, and for images the decoded dimensions and EXIF camera
// metadata.
//
// Design decision: Probing is a separate step because:
// 1. It front-loads the failures that make the rest of the run pointless
//    (missing file, unsupported extension)
// 2. Image metadata is report material, not extraction material
// 3. Later steps can rely on report.Kind being set
type ProbeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// ProbeStepOption configures a ProbeStep.
type ProbeStepOption func(*ProbeStep)

// WithProbeLogger sets a custom logger for the probe step.
func WithProbeLogger(logger *slog.Logger) ProbeStepOption {
	return func(s *ProbeStep) {
		s.logger = logger
	}
}

// NewProbeStep creates a new input probing step.
func NewProbeStep(opts ...ProbeStepOption) *ProbeStep {
	s := &ProbeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return "probe"
}

// Do executes the probe step.
func (s *ProbeStep) Do(_ context.Context, report *model.ExtractionReport) error {
	info, err := os.Stat(report.InputPath)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	report.SizeBytes = info.Size()

	kind, err := model.DetectKind(report.InputPath)
	if err != nil {
		return err
	}
	report.SetKind(kind)

	if kind == model.KindImage {
		report.PageCount = 1
		meta, err := extract.ProbeImage(report.InputPath)
		if err != nil {
			// Metadata is nice-to-have; recognition can still proceed.
			s.logger.Warn("image probe failed", "input", report.InputPath, "error", err)
			report.AddStepError(s.Name(), err)
			return nil
		}
		report.Metadata = meta
	}

	s.logger.Debug("input probed",
		"input", report.InputPath,
		"kind", report.KindName,
		"size_bytes", report.SizeBytes,
	)
	return nil
}

// EmbeddedTextStep pulls the embedded text layer out of PDF inputs.
// When the layer holds enough text the document is done without OCR;
// otherwise the step leaves the report untouched so OCRStep takes over.
//
// Design decision: Embedded extraction always reads every page, even
// when a page selection is configured. The selection restricts what the
// OCR fallback renders; a text layer either serves the whole document or
// is not trusted at all.
type EmbeddedTextStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// EmbeddedTextStepOption configures an EmbeddedTextStep.
type EmbeddedTextStepOption func(*EmbeddedTextStep)

// WithEmbeddedTextLogger sets a custom logger for the embedded text step.
func WithEmbeddedTextLogger(logger *slog.Logger) EmbeddedTextStepOption {
	return func(s *EmbeddedTextStep) {
		s.logger = logger
	}
}

// NewEmbeddedTextStep creates a new embedded text extraction step.
func NewEmbeddedTextStep(opts ...EmbeddedTextStepOption) *EmbeddedTextStep {
	s := &EmbeddedTextStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EmbeddedTextStep) Name() string {
	return "embedded_text"
}

// Do executes the embedded text step.
func (s *EmbeddedTextStep) Do(_ context.Context, report *model.ExtractionReport) error {
	if report.Kind != model.KindPDF {
		return nil
	}

	text, pageCount, err := extract.EmbeddedText(report.InputPath)
	if pageCount > 0 {
		report.PageCount = pageCount
	}
	if err != nil {
		if errors.Is(err, extract.ErrEmptyText) {
			s.logger.Debug("no embedded text layer", "input", report.InputPath)
			return nil
		}
		// A broken text layer is not fatal: the OCR fallback can still
		// read the rendered pages.
		s.logger.Warn("embedded text extraction failed", "input", report.InputPath, "error", err)
		report.AddStepError(s.Name(), err)
		return nil
	}

	if !extract.HasSubstantialText(text) {
		s.logger.Debug("embedded text below threshold, falling back to ocr",
			"input", report.InputPath,
			"chars", len(text),
		)
		return nil
	}

	report.SetText(text)
	report.Engine = model.EngineEmbedded
	s.logger.Debug("embedded text layer used",
		"input", report.InputPath,
		"pages", pageCount,
		"chars", report.CharCount,
	)
	return nil
}

// OCRStep recognizes text from rendered PDF pages or image files.
// PDFs that already got their text from the embedded layer are skipped.
type OCRStep struct {
	// engine performs the actual recognition.
	engine ocr.Engine

	// zoom is the render zoom factor for PDF pages.
	zoom float64

	// languages lists the engine language codes to recognize.
	languages []string

	// pages restricts which PDF pages are rendered.
	pages model.PageRange

	// detectOrientation enables the engine's orientation detection.
	detectOrientation bool

	// logger for structured logging.
	logger *slog.Logger
}

// OCRStepOption configures an OCRStep.
type OCRStepOption func(*OCRStep)

// WithOCRZoom sets the render zoom factor for PDF pages.
func WithOCRZoom(zoom float64) OCRStepOption {
	return func(s *OCRStep) {
		if zoom > 0 {
			s.zoom = zoom
		}
	}
}

// WithOCRLanguages sets the engine language codes.
func WithOCRLanguages(languages []string) OCRStepOption {
	return func(s *OCRStep) {
		if len(languages) > 0 {
			s.languages = languages
		}
	}
}

// WithOCRPages restricts which PDF pages are rendered.
func WithOCRPages(pages model.PageRange) OCRStepOption {
	return func(s *OCRStep) {
		s.pages = pages
	}
}

// WithOCROrientationDetection toggles the engine's orientation and
// script detection for rotated scans.
func WithOCROrientationDetection(enabled bool) OCRStepOption {
	return func(s *OCRStep) {
		s.detectOrientation = enabled
	}
}

// WithOCRLogger sets a custom logger for the OCR step.
func WithOCRLogger(logger *slog.Logger) OCRStepOption {
	return func(s *OCRStep) {
		s.logger = logger
	}
}

// NewOCRStep creates a new recognition step backed by the given engine.
func NewOCRStep(engine ocr.Engine, opts ...OCRStepOption) *OCRStep {
	s := &OCRStep{
		engine:            engine,
		zoom:              config.DefaultZoom,
		languages:         []string{config.DefaultLanguage},
		detectOrientation: true,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *OCRStep) Name() string {
	return "ocr"
}

// Do executes the OCR step.
func (s *OCRStep) Do(ctx context.Context, report *model.ExtractionReport) error {
	if report.Engine == model.EngineEmbedded {
		s.logger.Debug("skipping ocr, embedded text layer was used", "input", report.InputPath)
		return nil
	}

	switch report.Kind {
	case model.KindPDF:
		return s.recognizePDF(ctx, report)
	case model.KindImage:
		return s.recognizeImage(ctx, report)
	default:
		return fmt.Errorf("cannot recognize %s input %s", report.Kind, report.InputPath)
	}
}

// recognizePDF renders the selected pages and recognizes each one,
// assembling the page texts into marked blocks.
func (s *OCRStep) recognizePDF(ctx context.Context, report *model.ExtractionReport) error {
	renderer, err := extract.OpenRenderer(report.InputPath)
	if err != nil {
		return err
	}
	defer renderer.Close()

	pageCount := renderer.PageCount()
	report.PageCount = pageCount
	report.Engine = model.EngineOCR

	selected := s.pages.Filter(pageCount)
	if len(selected) == 0 {
		s.logger.Warn("page selection matches no pages",
			"input", report.InputPath,
			"pages", s.pages.String(),
			"page_count", pageCount,
		)
		report.SetText("")
		return nil
	}

	dpi := int(extract.RenderDPI(s.zoom))
	blocks := make([]string, 0, len(selected))
	var confidenceSum float64
	confidencePages := 0

	for _, page := range selected {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		png, err := renderer.RenderPage(page, s.zoom)
		if err != nil {
			return err
		}

		result, err := s.engine.Recognize(ctx, ocr.Input{
			ID:                fmt.Sprintf("page-%d", page+1),
			Image:             png,
			Languages:         s.languages,
			DPI:               dpi,
			DetectOrientation: s.detectOrientation,
		})
		if err != nil {
			return fmt.Errorf("recognize page %d of %s: %w", page+1, report.InputPath, err)
		}

		blocks = append(blocks, fmt.Sprintf("-- PAGE %d --\n%s", page+1, result.Text))
		report.PagesProcessed = append(report.PagesProcessed, page+1)
		if result.MeanConfidence > 0 {
			confidenceSum += result.MeanConfidence
			confidencePages++
		}

		s.logger.Debug("page recognized",
			"input", report.InputPath,
			"page", page+1,
			"chars", len(result.Text),
		)
	}

	report.SetText(strings.TrimSpace(strings.Join(blocks, "\n\n")))
	if confidencePages > 0 {
		report.MeanConfidence = confidenceSum / float64(confidencePages)
	}
	return nil
}

// recognizeImage feeds the image bytes to the engine directly.
func (s *OCRStep) recognizeImage(ctx context.Context, report *model.ExtractionReport) error {
	data, err := extract.ReadImage(report.InputPath)
	if err != nil {
		return err
	}

	result, err := s.engine.Recognize(ctx, ocr.Input{
		ID:                report.BaseName(),
		Image:             data,
		Languages:         s.languages,
		DetectOrientation: s.detectOrientation,
	})
	if err != nil {
		return fmt.Errorf("recognize %s: %w", report.InputPath, err)
	}

	report.Engine = model.EngineOCR
	report.SetText(result.Text)
	report.MeanConfidence = result.MeanConfidence
	return nil
}

// CleanStep normalizes the extracted text: diacritics folded, character
// confusions fixed, misread words corrected, whitespace collapsed.
type CleanStep struct {
	// cleaner applies the normalization passes.
	cleaner *textclean.Cleaner

	// logger for structured logging.
	logger *slog.Logger
}

// CleanStepOption configures a CleanStep.
type CleanStepOption func(*CleanStep)

// WithCleanLogger sets a custom logger for the clean step.
func WithCleanLogger(logger *slog.Logger) CleanStepOption {
	return func(s *CleanStep) {
		s.logger = logger
	}
}

// NewCleanStep creates a new text cleaning step.
func NewCleanStep(cleaner *textclean.Cleaner, opts ...CleanStepOption) *CleanStep {
	s := &CleanStep{
		cleaner: cleaner,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CleanStep) Name() string {
	return "clean"
}

// Do executes the clean step.
func (s *CleanStep) Do(_ context.Context, report *model.ExtractionReport) error {
	if report.Text == "" {
		s.logger.Debug("skipping clean, no text extracted", "input", report.InputPath)
		return nil
	}

	before := report.CharCount
	report.SetText(s.cleaner.Clean(report.Text))
	report.CleanApplied = true

	s.logger.Debug("text cleaned",
		"input", report.InputPath,
		"chars_before", before,
		"chars_after", report.CharCount,
	)
	return nil
}

// CorrectStep sends the extracted text to an AI corrector. A failure is
// fatal because the user explicitly asked for correction.
type CorrectStep struct {
	// corrector fixes OCR errors in the text.
	corrector correct.Corrector

	// logger for structured logging.
	logger *slog.Logger
}

// CorrectStepOption configures a CorrectStep.
type CorrectStepOption func(*CorrectStep)

// WithCorrectLogger sets a custom logger for the correction step.
func WithCorrectLogger(logger *slog.Logger) CorrectStepOption {
	return func(s *CorrectStep) {
		s.logger = logger
	}
}

// NewCorrectStep creates a new AI correction step.
func NewCorrectStep(corrector correct.Corrector, opts ...CorrectStepOption) *CorrectStep {
	s := &CorrectStep{
		corrector: corrector,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CorrectStep) Name() string {
	return "ai_correct"
}

// Do executes the correction step.
func (s *CorrectStep) Do(ctx context.Context, report *model.ExtractionReport) error {
	if report.Text == "" {
		s.logger.Debug("skipping ai correction, no text extracted", "input", report.InputPath)
		return nil
	}

	corrected, err := s.corrector.Correct(ctx, report.Text)
	if err != nil {
		return fmt.Errorf("ai correction: %w", err)
	}

	report.SetText(corrected)
	report.AICorrected = true
	s.logger.Debug("ai correction applied", "input", report.InputPath, "chars", report.CharCount)
	return nil
}

// ExtractionConfig holds the parameters for assembling the standard
// extraction pipeline.
type ExtractionConfig struct {
	// Zoom is the render zoom factor for the OCR fallback.
	Zoom float64

	// Languages lists the OCR language codes (e.g. "eng", "fra").
	Languages []string

	// Pages restricts which PDF pages the OCR fallback renders.
	Pages model.PageRange

	// DetectOrientation enables the engine's orientation detection.
	DetectOrientation bool

	// Cleaner enables the text cleaning step when non-nil.
	Cleaner *textclean.Cleaner

	// Corrector enables the AI correction step when non-nil.
	Corrector correct.Corrector
}

// NewReport creates the report for one input file with the extraction
// parameters stamped on it.
func (c ExtractionConfig) NewReport(path string) *model.ExtractionReport {
	report := model.NewExtractionReport(path)
	report.Zoom = c.Zoom
	report.Language = strings.Join(c.Languages, "+")
	report.AngleCorrection = c.DetectOrientation
	report.SetPageSelection(c.Pages)
	return report
}

// NewExtraction assembles the standard extraction pipeline: probe the
// input, try the embedded text layer, fall back to OCR, then optionally
// clean and AI-correct the result.
//
// Design decision: We provide a standard assembly because the CLI and
// the HTTP server need the exact same step ordering, and the invariants
// (probe before extract, clean before correct) are easy to get wrong
// when assembled by hand.
func NewExtraction(engine ocr.Engine, cfg ExtractionConfig, opts ...Option) *Pipeline {
	p := New(opts...)

	ocrOpts := []OCRStepOption{
		WithOCRZoom(cfg.Zoom),
		WithOCRPages(cfg.Pages),
		WithOCROrientationDetection(cfg.DetectOrientation),
		WithOCRLogger(p.logger),
	}
	if len(cfg.Languages) > 0 {
		ocrOpts = append(ocrOpts, WithOCRLanguages(cfg.Languages))
	}

	p.AddSteps(
		NewProbeStep(WithProbeLogger(p.logger)),
		NewEmbeddedTextStep(WithEmbeddedTextLogger(p.logger)),
		NewOCRStep(engine, ocrOpts...),
	)
	if cfg.Cleaner != nil {
		p.AddStep(NewCleanStep(cfg.Cleaner, WithCleanLogger(p.logger)))
	}
	if cfg.Corrector != nil {
		p.AddStep(NewCorrectStep(cfg.Corrector, WithCorrectLogger(p.logger)))
	}

	return p
}
