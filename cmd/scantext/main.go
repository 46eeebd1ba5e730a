// Package main provides the entry point for the scantext CLI.
//
// scantext extracts text from PDF documents and raster images. PDFs with
// an embedded text layer are read directly; everything else is rendered
// and run through OCR.
//
// Usage:
//
//	scantext extract --file document.pdf
//	scantext extract --file scan.png --lang fra --clean
//
// See --help for all available options.
package main

// main is the entry point for scantext.
func main() {
	Execute()
}
