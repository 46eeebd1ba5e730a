package correct

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when AI correction is requested but no
// API key is available.
var ErrNotConfigured = errors.New("ai correction not configured")

// Corrector fixes OCR errors in extracted text.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}
