// Package ocr defines the optical character recognition contract and its
// tesseract implementation.
//
// Engine is deliberately minimal (one image in, one result out) so the
// pipeline and the HTTP server can be tested against stub engines
// without a tesseract installation. The Tesseract implementation creates
// a fresh gosseract client per recognition, which keeps it safe for
// concurrent use at the cost of repeated initialization.
package ocr
