package model

import (
	"math"
	"path/filepath"
	"time"
	"unicode/utf8"
)

// Extraction engines recorded in reports and history rows.
const (
	// EngineEmbedded means the text came from the PDF's embedded text layer.
	EngineEmbedded = "embedded"

	// EngineOCR means the text came from optical character recognition.
	EngineOCR = "ocr"
)

// ExtractionReport is the result of processing a single input file.
// It contains the extracted text plus everything worth knowing about how
// it was produced: parameters, timings, document facts, and any errors
// collected along the way.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. Presentation-only fields
// (KindName, StatusName, PagesExpr) are kept in sync by the setters so the
// JSON form is readable without custom marshalers.
type ExtractionReport struct {
	// === Input Information ===

	// InputPath is the file that was processed, as given by the user.
	InputPath string `json:"input_path"`

	// Kind is the detected document kind.
	Kind Kind `json:"-"` // Excluded from JSON (KindName carries it)

	// KindName is the human-readable document kind ("pdf", "image").
	KindName string `json:"kind,omitempty"`

	// SizeBytes is the input file size.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// StartedAt is when processing of this file began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long processing took.
	Duration time.Duration `json:"-"` // Excluded from JSON (Seconds carries it)

	// Seconds is the processing duration in seconds, rounded to
	// milliseconds for display and API responses.
	Seconds float64 `json:"seconds"`

	// === Extraction Parameters ===

	// Language is the OCR language code used (e.g. "eng", "fra").
	Language string `json:"language,omitempty"`

	// Zoom is the render zoom factor used for the OCR fallback.
	Zoom float64 `json:"zoom,omitempty"`

	// PageSelection is the requested page selection.
	PageSelection PageRange `json:"-"` // Excluded from JSON (PagesExpr carries it)

	// PagesExpr is the page selection as a compact 1-based expression,
	// "all" when no selection was given.
	PagesExpr string `json:"pages,omitempty"`

	// AngleCorrection records whether the OCR engine's orientation
	// detection was enabled.
	AngleCorrection bool `json:"angle_correction"`

	// CleanApplied is true when the text cleanup pass ran.
	CleanApplied bool `json:"clean_applied"`

	// AICorrected is true when the AI correction pass ran.
	AICorrected bool `json:"ai_corrected"`

	// === Document Data ===

	// PageCount is the number of pages in the document. Always 1 for images.
	PageCount int `json:"page_count,omitempty"`

	// PagesProcessed lists the 1-based page numbers the OCR fallback
	// actually rendered. Empty when the embedded text layer was used.
	PagesProcessed []int `json:"pages_processed,omitempty"`

	// Engine records where the text came from: EngineEmbedded or EngineOCR.
	Engine string `json:"engine,omitempty"`

	// Text is the extracted text.
	Text string `json:"text,omitempty"`

	// CharCount is the number of characters (runes) in Text.
	CharCount int `json:"char_count"`

	// MeanConfidence is the OCR engine's mean word confidence in [0,1].
	// Zero when the embedded text layer was used.
	MeanConfidence float64 `json:"mean_confidence,omitempty"`

	// === Image Metadata ===

	// Metadata holds image facts (dimensions, EXIF) for image inputs.
	// Nil for PDFs and for images that could not be probed.
	Metadata *ImageMetadata `json:"metadata,omitempty"`

	// === Run State ===

	// Status is the processing outcome.
	Status Status `json:"-"` // Excluded from JSON (StatusName carries it)

	// StatusName is the stable lowercase status ("ok", "skipped", "error").
	StatusName string `json:"status"`

	// StepErrors collects non-fatal errors recorded by individual
	// processing steps.
	StepErrors []StepError `json:"step_errors,omitempty"`

	// Error is the fatal error that stopped processing, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// StepError records a non-fatal error from a named processing step.
type StepError struct {
	// Step is the name of the step that reported the error.
	Step string `json:"step"`

	// Message is the error text.
	Message string `json:"message"`
}

// ImageMetadata holds facts about an image input gathered before OCR.
// Dimension fields come from decoding the image header; the camera fields
// come from EXIF and are empty when the image carries none.
type ImageMetadata struct {
	// Format is the decoded image format name (e.g. "png", "jpeg").
	Format string `json:"format,omitempty"`

	// Width is the image width in pixels.
	Width int `json:"width,omitempty"`

	// Height is the image height in pixels.
	Height int `json:"height,omitempty"`

	// CameraMake is the EXIF Make tag.
	CameraMake string `json:"camera_make,omitempty"`

	// CameraModel is the EXIF Model tag.
	CameraModel string `json:"camera_model,omitempty"`

	// Software is the EXIF Software tag.
	Software string `json:"software,omitempty"`

	// CapturedAt is the EXIF DateTime tag, verbatim.
	CapturedAt string `json:"captured_at,omitempty"`

	// Orientation is the EXIF Orientation tag, verbatim.
	Orientation string `json:"orientation,omitempty"`
}

// NewExtractionReport creates a report for the given input file with the
// processing clock started.
func NewExtractionReport(inputPath string) *ExtractionReport {
	r := &ExtractionReport{
		InputPath: inputPath,
		StartedAt: time.Now(),
	}
	r.SetStatus(StatusOK)
	return r
}

// BaseName returns the input file name without its directory.
// Batch output blocks are headed by this name.
func (r *ExtractionReport) BaseName() string {
	return filepath.Base(r.InputPath)
}

// SetKind records the detected document kind.
func (r *ExtractionReport) SetKind(k Kind) {
	r.Kind = k
	r.KindName = k.String()
}

// SetStatus records the processing outcome.
func (r *ExtractionReport) SetStatus(s Status) {
	r.Status = s
	r.StatusName = s.String()
}

// SetPageSelection records the requested page selection.
func (r *ExtractionReport) SetPageSelection(pr PageRange) {
	r.PageSelection = pr
	r.PagesExpr = pr.String()
}

// SetText stores the extracted text and keeps CharCount in sync.
func (r *ExtractionReport) SetText(text string) {
	r.Text = text
	r.CharCount = utf8.RuneCountInString(text)
}

// AddStepError records a non-fatal error from a named step.
func (r *ExtractionReport) AddStepError(step string, err error) {
	if err == nil {
		return
	}
	r.StepErrors = append(r.StepErrors, StepError{Step: step, Message: err.Error()})
}

// Fail records a fatal error and marks the report as failed.
func (r *ExtractionReport) Fail(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.SetStatus(StatusError)
}

// Skip marks the report as skipped with the given reason.
func (r *ExtractionReport) Skip(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.SetStatus(StatusSkipped)
}

// Finish stamps the processing duration, measured from StartedAt.
// Calling it again extends the window to cover work done after the
// pipeline, such as a post-run correction pass.
func (r *ExtractionReport) Finish() {
	r.Duration = time.Since(r.StartedAt)
	r.Seconds = math.Round(r.Duration.Seconds()*1000) / 1000
}

// Failed reports whether processing ended in a fatal error.
func (r *ExtractionReport) Failed() bool {
	return r.Status == StatusError
}
