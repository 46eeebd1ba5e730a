// Package log provides logging for scantext, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Truncation of oversized attribute values (extracted document text)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Attribute Trimming
//
// The TrimHandler shortens string attributes longer than MaxAttrLen before
// they reach the underlying handler. Extraction code can log the text it
// produced without flooding the log or copying whole documents into shared
// log storage; only a bounded prefix ever appears.
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("extraction finished",
//	    "input", "scan.pdf",
//	    "text", text, // Truncated to a preview automatically
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
