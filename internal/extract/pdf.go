package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyText is returned when a PDF has no extractable text layer.
// Callers treat it as the signal to fall back to rendering and OCR.
var ErrEmptyText = errors.New("no extractable text found in pdf")

// EmbeddedTextThreshold is the minimum number of characters the embedded
// text layer must contain to be trusted. Scanned PDFs often carry a few
// stray characters of text (watermarks, producer stamps); below this
// length the document is treated as image-only and sent to OCR.
const EmbeddedTextThreshold = 100

// EmbeddedText extracts the embedded text layer of a PDF and reports the
// page count. All pages are read regardless of any page selection; the
// selection only applies to the OCR fallback. Non-empty page texts are
// joined with a newline and the result is trimmed. Returns ErrEmptyText
// when the document carries no text at all.
func EmbeddedText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	parts := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with broken content streams are common in scanned
			// documents; the remaining pages may still carry text.
			continue
		}
		if text = normalizePDFText(text); text != "" {
			parts = append(parts, text)
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n"))
	if combined == "" {
		return "", pageCount, ErrEmptyText
	}
	return combined, pageCount, nil
}

// HasSubstantialText reports whether text is long enough to be used
// instead of OCR.
func HasSubstantialText(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > EmbeddedTextThreshold
}

// normalizePDFText removes artifacts PDF text extraction tends to leave
// behind: NUL bytes from broken CMaps and carriage returns from literal
// string line endings.
func normalizePDFText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
