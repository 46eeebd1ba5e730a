package extract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// baseDPI is the rendering resolution at zoom 1.0. PDF user space is
// defined in points (1/72 inch), so a zoom factor multiplies directly
// onto it.
const baseDPI = 72

// Renderer rasterizes PDF pages for OCR. It wraps an open document and
// must be closed after use.
type Renderer struct {
	doc  *fitz.Document
	path string
}

// OpenRenderer opens a PDF for page rasterization.
func OpenRenderer(path string) (*Renderer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	return &Renderer{doc: doc, path: path}, nil
}

// PageCount returns the number of pages in the document.
func (r *Renderer) PageCount() int {
	return r.doc.NumPage()
}

// RenderPage rasterizes the zero-based page at the given zoom factor and
// returns it as PNG bytes ready for the OCR engine.
func (r *Renderer) RenderPage(page int, zoom float64) ([]byte, error) {
	if page < 0 || page >= r.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range for %s (%d pages)", page+1, r.path, r.doc.NumPage())
	}
	png, err := r.doc.ImagePNG(page, RenderDPI(zoom))
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w", page+1, r.path, err)
	}
	return png, nil
}

// Close releases the underlying document resources.
func (r *Renderer) Close() error {
	return r.doc.Close()
}

// RenderDPI maps a zoom factor to the rendering resolution in dots per
// inch.
func RenderDPI(zoom float64) float64 {
	return baseDPI * zoom
}
