package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/correct"
	"github.com/louvel/scantext/internal/history"
	"github.com/louvel/scantext/internal/log"
	"github.com/louvel/scantext/internal/ocr"
	"github.com/louvel/scantext/internal/server"
	"github.com/louvel/scantext/internal/textclean"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP extraction API",
		Long: `Serve starts an HTTP API exposing the extraction pipeline.

POST a file to /api/v1/extract as multipart/form-data to receive its
text as JSON. The form accepts the same parameters as the extract
command: zoom, lang, pages, use_angle, clean, apply_ai_correction.

The server processes a limited number of uploads concurrently (see
maxConcurrent in the configuration file) and queues the rest.

Examples:
  # Listen on the default address
  scantext serve

  # Listen on another port
  scantext serve --addr :8080

  # Try it
  curl -F file=@scan.png -F lang=fra http://localhost:5000/api/v1/extract`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultServerAddr,
		"Listen address (host:port)")
	cmd.Flags().String("config", "",
		"Configuration file path (default: scantext.yml in current, XDG config, or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := applyConfigFile(cfg); err != nil {
		return err
	}

	if cmd.Flags().Changed("addr") {
		cfg.ServerAddr, err = cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
	}

	// Request logging should be visible without --verbose, so the server
	// logger defaults to info rather than warn.
	logger := log.NewServerLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := ocr.NewTesseract()

	cleaner := textclean.NewCleaner()
	if cfg.DictionaryPath != "" {
		if err := cleaner.LoadWordList(cfg.DictionaryPath); err != nil {
			return fmt.Errorf("failed to load word list %s: %w", cfg.DictionaryPath, err)
		}
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithCleaner(cleaner),
	}

	// AI correction is optional: without a key the endpoint still works,
	// it just rejects apply_ai_correction requests.
	corrector, err := correct.FromEnv(cfg.AIBaseURL, cfg.AIModel, cfg.AIKeyEnv)
	switch {
	case err == nil:
		opts = append(opts, server.WithCorrector(corrector))
	case errors.Is(err, correct.ErrNotConfigured):
		logger.Info("ai correction disabled", "reason", err)
	default:
		return err
	}

	if !cfg.HistoryDisabled {
		store, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
		if err != nil {
			logger.Warn("run history unavailable", "dir", cfg.HistoryDir, "error", err)
		} else {
			defer store.Close()
			opts = append(opts, server.WithRecorder(store))
		}
	}

	logger.Info("starting http api",
		"addr", cfg.ServerAddr,
		"max_concurrent", cfg.ServerMaxConcurrent,
		"max_upload_bytes", cfg.MaxUploadSize,
	)

	return server.NewServer(engine, cfg, opts...).Start(ctx)
}
