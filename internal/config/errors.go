package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoInput is returned when no input file is specified and none was
	// selected interactively. The extract command maps this to exit code 2.
	ErrNoInput = errors.New("no input file specified: pass --file or pick one interactively")

	// ErrInvalidZoom is returned when the render zoom factor is not positive.
	// Zoom scales the 72 DPI base resolution, so zero or negative values
	// cannot produce a bitmap.
	ErrInvalidZoom = errors.New("invalid zoom: must be positive")

	// ErrNoLanguage is returned when the OCR language is empty.
	// Tesseract needs at least one language pack name to load.
	ErrNoLanguage = errors.New("no OCR language specified")

	// ErrInvalidConcurrency is returned when the server OCR concurrency
	// limit is not positive. A limit of zero would deadlock every request.
	ErrInvalidConcurrency = errors.New("invalid max concurrent OCR jobs: must be positive")

	// ErrInvalidUploadSize is returned when the multipart upload limit is
	// not positive.
	ErrInvalidUploadSize = errors.New("invalid max upload size: must be positive")
)
