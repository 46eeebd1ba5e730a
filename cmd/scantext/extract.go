package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/correct"
	"github.com/louvel/scantext/internal/history"
	"github.com/louvel/scantext/internal/log"
	"github.com/louvel/scantext/internal/model"
	"github.com/louvel/scantext/internal/ocr"
	"github.com/louvel/scantext/internal/pipeline"
	"github.com/louvel/scantext/internal/report"
	"github.com/louvel/scantext/internal/textclean"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Extract text from PDF and image files",
		Long: `Extract reads PDF documents and raster images and prints their text.

PDFs with an embedded text layer are read directly. Scanned PDFs are
rendered page by page and run through OCR, as are image files. With
several inputs the combined output carries one "-- name --" block per
file, in input order.

Without --file (or positional arguments), extract lists the supported
files in the current directory and asks which one to process.

Examples:
  # Extract a single document
  scantext extract --file invoice.pdf

  # Several files, combined output to a file
  scantext extract -f a.pdf -f b.png -o combined.txt

  # French scan, higher render zoom, cleaned up text
  scantext extract -f scan.png -l fra -z 3.0 --clean

  # Only OCR pages 1, 3, 4 and 5 of a scanned PDF
  scantext extract -f scan.pdf -p 1,3-5

  # Interactive multi-file selection
  scantext extract --batch`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtractCmd,
	}

	// Input selection flags
	cmd.Flags().StringArrayP("file", "f", nil,
		"Input file to process (repeat the flag for several files)")
	cmd.Flags().BoolP("batch", "b", false,
		"Select multiple files in the interactive picker")

	// Extraction behavior flags
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"OCR language, packs combined with '+' (e.g. eng+fra)")
	cmd.Flags().StringP("pages", "p", "",
		"Pages to OCR, 1-based (e.g. 1,3-5; default: all pages)")
	cmd.Flags().Float64P("zoom", "z", config.DefaultZoom,
		"Render zoom factor for the OCR fallback (DPI = 72 * zoom)")
	cmd.Flags().BoolP("clean", "c", false,
		"Clean up recognized text (character confusions, spelling, whitespace)")
	cmd.Flags().BoolP("no-angle", "n", false,
		"Skip orientation detection for rotated scans")
	cmd.Flags().Bool("ai-correct", false,
		"Send extracted text to the configured AI endpoint for a correction pass")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write extracted text to this file instead of stdout")
	cmd.Flags().String("report", "",
		"Write a run report to this file (.json, .md, or plain text)")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: scantext.yml in current, XDG config, or home directory)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	// Build config from the configuration file and flags
	cfg, err := buildExtractConfig(cmd, args)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// No inputs named on the command line: ask interactively
	if len(cfg.Inputs) == 0 {
		selected, err := pickInputs(cmd, cfg.Batch)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		cfg.Inputs = selected
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExtract(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// pickInputs lists the supported files in the working directory and asks
// which to process. It returns errQuit when the user backs out.
func pickInputs(cmd *cobra.Command, batch bool) ([]string, error) {
	paths, err := listSupportedFiles(".")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No supported files found in the current directory.")
		fmt.Fprintf(cmd.ErrOrStderr(), "Supported extensions: %s\n",
			strings.Join(model.SupportedExtensions(), ", "))
		return nil, config.ErrNoInput
	}

	picker := newPicker(cmd.InOrStdin(), cmd.OutOrStdout())
	if batch {
		return picker.SelectMany(paths)
	}

	path, err := picker.SelectOne(paths)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildExtractConfig creates a Config from the configuration file and
// command flags. Flags win over file values, which win over defaults.
func buildExtractConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	files, err := cmd.Flags().GetStringArray("file")
	if err != nil {
		return nil, err
	}
	cfg.Inputs = append(files, args...)

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.Pages, err = cmd.Flags().GetString("pages")
	if err != nil {
		return nil, err
	}

	cfg.Batch, err = cmd.Flags().GetBool("batch")
	if err != nil {
		return nil, err
	}

	cfg.AICorrect, err = cmd.Flags().GetBool("ai-correct")
	if err != nil {
		return nil, err
	}

	// Values the configuration file can also set are only taken from a
	// flag the user actually passed.
	if cmd.Flags().Changed("lang") {
		cfg.Language, err = cmd.Flags().GetString("lang")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("zoom") {
		cfg.Zoom, err = cmd.Flags().GetFloat64("zoom")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("clean") {
		cfg.Clean, err = cmd.Flags().GetBool("clean")
		if err != nil {
			return nil, err
		}
	}

	noAngle, err := cmd.Flags().GetBool("no-angle")
	if err != nil {
		return nil, err
	}
	if noAngle {
		cfg.AngleCorrection = false
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyConfigFile locates and applies the configuration file.
// If the user explicitly specified a config file path, error if not found.
// If no path specified, silently keep the defaults if no file is found.
func applyConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	file.Apply(cfg)

	return nil
}

// runExtract executes the extraction.
func runExtract(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting extraction",
		"inputs", len(cfg.Inputs),
		"lang", cfg.Language,
		"zoom", cfg.Zoom,
		"clean", cfg.Clean,
	)

	pages, err := model.ParsePageRange(cfg.Pages)
	if err != nil {
		return fmt.Errorf("invalid page selection %q: %w", cfg.Pages, err)
	}

	extractionCfg := pipeline.ExtractionConfig{
		Zoom:              cfg.Zoom,
		Languages:         config.SplitLanguage(cfg.Language),
		Pages:             pages,
		DetectOrientation: cfg.AngleCorrection,
	}

	if cfg.Clean {
		cleaner := textclean.NewCleaner()
		if cfg.DictionaryPath != "" {
			if err := cleaner.LoadWordList(cfg.DictionaryPath); err != nil {
				return fmt.Errorf("failed to load word list %s: %w", cfg.DictionaryPath, err)
			}
		}
		extractionCfg.Cleaner = cleaner
	}

	if cfg.AICorrect {
		corrector, err := correct.FromEnv(cfg.AIBaseURL, cfg.AIModel, cfg.AIKeyEnv)
		if err != nil {
			return err
		}
		extractionCfg.Corrector = corrector
	}

	engine := ocr.NewTesseract()

	runnerOpts := []pipeline.BatchOption{
		pipeline.WithBatchLogger(logger),
		pipeline.WithBatchReportFactory(extractionCfg.NewReport),
		pipeline.WithBatchProgress(func(r *model.ExtractionReport, index, total int) {
			if total < 2 {
				return
			}
			fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", index, total, r.BaseName(), progressText(r))
		}),
	}

	// Open the history store unless recording is disabled. A broken
	// history database must never block an extraction.
	if !cfg.HistoryDisabled {
		store, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
		if err != nil {
			logger.Warn("run history unavailable", "dir", cfg.HistoryDir, "error", err)
		} else {
			defer store.Close()
			runnerOpts = append(runnerOpts, pipeline.WithBatchRecorder(store))
		}
	}

	runner := pipeline.NewBatchRunner(func() *pipeline.Pipeline {
		return pipeline.NewExtraction(engine, extractionCfg, pipeline.WithLogger(logger))
	}, runnerOpts...)

	reports, err := runner.Run(ctx, cfg.Inputs)
	if err != nil {
		return err
	}

	if err := writeText(cfg, reports, stdout); err != nil {
		return err
	}
	if cfg.OutputPath != "" {
		fmt.Fprintf(stderr, "Extracted text written to %s\n", cfg.OutputPath)
	}

	if cfg.ReportFile != "" {
		if err := writeReport(cfg.ReportFile, reports); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Run report written to %s\n", cfg.ReportFile)
	}

	return extractionErr(reports)
}

// progressText summarizes one finished report for the progress line.
func progressText(r *model.ExtractionReport) string {
	if r.Failed() {
		return fmt.Sprintf("failed (%s)", r.ErrorMessage)
	}
	return fmt.Sprintf("%d chars via %s in %.1fs", r.CharCount, r.Engine, r.Duration.Seconds())
}

// writeText writes the extracted text to the configured destination.
// A single input prints bare text; several inputs print one block per
// file headed by its base name.
func writeText(cfg *config.Config, reports []*model.ExtractionReport, stdout io.Writer) error {
	output := stdout
	if cfg.OutputPath != "" {
		f, err := createOutputFile(cfg.OutputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	writer := report.NewTextWriter(output)
	if len(reports) == 1 {
		_, err := writer.Write(reports[0])
		if err != nil {
			return fmt.Errorf("failed to write extracted text: %w", err)
		}
		return nil
	}

	if _, err := writer.WriteBatch(reports); err != nil {
		return fmt.Errorf("failed to write extracted text: %w", err)
	}
	return nil
}

// writeReport writes the run report in the format implied by the file
// extension.
func writeReport(path string, reports []*model.ExtractionReport) error {
	f, err := createOutputFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := report.NewWriter(report.FormatForPath(path), f)
	if len(reports) == 1 {
		_, err = writer.Write(reports[0])
	} else {
		_, err = writer.WriteBatch(reports)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// createOutputFile creates the destination file, making parent
// directories as needed.
func createOutputFile(path string) (*os.File, error) {
	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create/overwrite the output file with secure permissions (0600)
	// Extracted text may contain sensitive document content that should
	// only be readable by the owner
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// extractionErr decides the command's final error. A single failed input
// surfaces its own error. In a batch the combined output already carries
// per-file ERROR blocks, so partial failure is not fatal; only a batch
// where no file succeeded fails the command.
func extractionErr(reports []*model.ExtractionReport) error {
	if len(reports) == 1 && reports[0].Failed() {
		return reports[0].Error
	}

	succeeded := 0
	for _, r := range reports {
		if r.Status == model.StatusOK {
			succeeded++
		}
	}
	if len(reports) > 1 && succeeded == 0 {
		return errors.New("all files failed")
	}
	return nil
}
