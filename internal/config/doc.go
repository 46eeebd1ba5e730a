// Package config provides configuration structures and utilities for scantext.
// It defines the main options for text extraction, OCR behavior, run history,
// and the HTTP API, merged from defaults, the YAML config file, and CLI flags.
package config
