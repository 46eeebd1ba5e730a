// Package server provides the HTTP API for scantext.
//
// The API mirrors the CLI: one endpoint accepts a file upload with the
// same extraction knobs the command line offers and returns the text.
//
//	GET  /api/v1/extract  health check
//	POST /api/v1/extract  multipart upload, runs the extraction pipeline
//
// Design decision: Uploads run through pipeline.NewExtraction, the same
// assembly the CLI uses, so the two surfaces cannot drift apart. The
// one divergence is AI correction, which runs after the pipeline here
// so its failures can map to 502 instead of a generic 500.
//
// Concurrency is capped by a weighted semaphore (default one job at a
// time) because the OCR engine saturates the CPU per document. Requests
// over the cap queue until a slot opens or the client gives up.
package server
