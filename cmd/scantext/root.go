// Package main provides the entry point for the scantext CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for scantext.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scantext",
		Short: "Extract text from PDF documents and images",
		Long: `scantext extracts text from PDF documents and raster images.

PDFs that carry an embedded text layer are read directly. Scanned PDFs
are rendered page by page and run through OCR, as are image files.
Without --file, scantext lists the supported files in the current
directory and asks which one to process.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code. Missing input is a
// usage problem and exits with 2; everything else, including extraction
// failures, exits with 1.
func exitCode(err error) int {
	if errors.Is(err, config.ErrNoInput) || errors.Is(err, pipeline.ErrNoValidInput) || errors.Is(err, os.ErrNotExist) {
		return 2
	}
	return 1
}
