package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Document kind errors.
var (
	// ErrUnsupportedFormat is returned when a file extension is neither PDF
	// nor a supported raster image format.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyPath is returned when the input path is empty.
	ErrEmptyPath = errors.New("input path cannot be empty")
)

// Kind represents the kind of input document, derived from the file
// extension. The kind decides the extraction flow: PDFs get an
// embedded-text pass with an OCR fallback, images always go to OCR.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output when needed.
type Kind int

const (
	// KindUnknown indicates an unrecognized or unsupported file type.
	KindUnknown Kind = iota

	// KindPDF indicates a PDF document.
	KindPDF

	// KindImage indicates a raster image in one of the supported formats.
	KindImage
)

// String returns a human-readable representation of the document kind.
func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// imageExtensions is the set of raster image extensions the OCR engine
// accepts. Extensions are lowercase with the leading dot.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".gif":  true,
	".ppm":  true,
	".pgm":  true,
	".pbm":  true,
	".pnm":  true,
}

// pdfExtension is the only document extension handled outside the image set.
const pdfExtension = ".pdf"

// DetectKind determines the document kind from the file extension.
// The comparison is case-insensitive. Unsupported extensions return
// ErrUnsupportedFormat wrapped with the offending extension so the
// user-facing message names what was rejected.
func DetectKind(path string) (Kind, error) {
	if path == "" {
		return KindUnknown, ErrEmptyPath
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == pdfExtension:
		return KindPDF, nil
	case imageExtensions[ext]:
		return KindImage, nil
	case ext == "":
		return KindUnknown, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	default:
		return KindUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedFile reports whether the path has a supported extension.
func IsSupportedFile(path string) bool {
	_, err := DetectKind(path)
	return err == nil
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns all supported extensions in sorted order,
// PDF included. Used for interactive file discovery and help text.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(imageExtensions)+1)
	exts = append(exts, pdfExtension)
	for ext := range imageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
