package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/louvel/scantext/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/scantext.yml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a scantext configuration file",
		Long: `Init writes a scantext.yml configuration file in the current directory.

The generated file documents every setting with its default value,
commented out: OCR language and zoom, text cleanup, run history, the
HTTP API, and the AI correction endpoint.

Examples:
  # Create scantext.yml in the current directory
  scantext init

  # Create the file at a specific path
  scantext init -o ~/.config/scantext/scantext.yml

  # Force overwrite an existing file
  scantext init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/scantext.yml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to change defaults such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - OCR language and render zoom")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Run history location")
	fmt.Fprintln(cmd.OutOrStdout(), "  - HTTP API address and limits")

	return nil
}
