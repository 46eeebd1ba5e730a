// Package extract reads text and metadata out of input documents.
//
// For PDFs it offers two independent mechanisms: EmbeddedText pulls the
// text layer directly from the file, and Renderer rasterizes pages into
// PNG images for OCR when that layer is missing or too thin to trust
// (see EmbeddedTextThreshold). For raster images it loads the bytes and
// probes format, dimensions, and EXIF camera metadata for reporting.
//
// The package is strictly mechanical: deciding which mechanism to use
// for a given input is the pipeline's job.
package extract
