package ocr

import (
	"context"
	"errors"
)

// ErrEngineUnavailable is returned when the OCR engine or its language
// data is not installed on the host.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// ID is a caller-provided identifier echoed back in the Result,
	// typically "page-3" for rendered PDF pages or the file name for
	// image inputs.
	ID string

	// Image is the encoded image payload (PNG, JPEG, TIFF, ...).
	Image []byte

	// Languages lists tesseract language codes (e.g. "eng", "fra") used
	// to select trained data. Empty means the engine default.
	Languages []string

	// DPI carries the effective dots per inch of the image so the engine
	// can scale its layout heuristics. Zero means unknown.
	DPI int

	// DetectOrientation enables orientation and script detection so
	// rotated scans are recognized upright.
	DetectOrientation bool
}

// Result captures recognition output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string

	// Text is the recognized text, trimmed of surrounding whitespace.
	Text string

	// MeanConfidence is the average word confidence in [0, 1], or zero
	// when the engine reports none.
	MeanConfidence float64
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}
