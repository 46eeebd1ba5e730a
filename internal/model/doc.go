// Package model defines the core data structures used throughout scantext.
//
// This package contains the following main types:
//   - Kind: The detected document kind (PDF or raster image)
//   - PageRange: A parsed page selection expression such as "1,3-5"
//   - Status: The outcome of processing one input file
//   - ExtractionReport: The per-file extraction result
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, pipeline, report, history, server)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
