package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/history"
	"github.com/spf13/cobra"
)

// History output formats.
const (
	historyFormatSimple   = "simple"
	historyFormatJSON     = "json"
	historyFormatMarkdown = "markdown"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded extraction runs",
		Long: `History lists past extraction runs from the local run database.

Every extract run and API request is recorded with its parameters and
outcome. Use --input to see only the runs for one specific file.

Examples:
  # The last 20 runs
  scantext history

  # The last 5 runs as JSON
  scantext history --limit 5 --format json

  # Every recorded run for one file
  scantext history --input invoice.pdf --limit 0`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to show (0 shows all)")
	cmd.Flags().String("format", historyFormatSimple,
		"Output format: simple, json, or markdown")
	cmd.Flags().String("input", "",
		"Only show runs for this input path")
	cmd.Flags().String("config", "",
		"Configuration file path (default: scantext.yml in current, XDG config, or home directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := applyConfigFile(cfg); err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != historyFormatSimple && format != historyFormatJSON && format != historyFormatMarkdown {
		return fmt.Errorf("unknown format %q (expected simple, json, or markdown)", format)
	}

	inputPath, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Viewing history must not create an empty database, so the store is
	// opened without the create option. A missing file just means
	// nothing has been recorded yet.
	store, err := history.Open(cfg.HistoryDir, history.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printNoHistory(out)
			return nil
		}
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	var runs []history.Run
	if inputPath != "" {
		runs, err = store.ForPath(ctx, inputPath, limit)
	} else {
		runs, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		if inputPath != "" {
			fmt.Fprintf(out, "No runs recorded for %s\n", inputPath)
			return nil
		}
		printNoHistory(out)
		return nil
	}

	switch format {
	case historyFormatJSON:
		return outputHistoryJSON(out, runs)
	case historyFormatMarkdown:
		return outputHistoryMarkdown(out, runs)
	default:
		return outputHistoryText(out, runs)
	}
}

// printNoHistory tells the user the run database is still empty.
func printNoHistory(out io.Writer) {
	fmt.Fprintln(out, "No extraction history recorded yet.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'scantext extract' to process a file first.")
}

// outputHistoryJSON outputs the runs in JSON format.
func outputHistoryJSON(out io.Writer, runs []history.Run) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runs)
}

// outputHistoryMarkdown outputs the runs in Markdown format.
func outputHistoryMarkdown(out io.Writer, runs []history.Run) error {
	fmt.Fprintf(out, "# Extraction History (%d runs)\n\n", len(runs))

	fmt.Fprintln(out, "| ID | Date | Status | Engine | Chars | Time | Input |")
	fmt.Fprintln(out, "|----|------|--------|--------|-------|------|-------|")
	for _, run := range runs {
		fmt.Fprintf(out, "| %d | %s | %s | %s | %d | %s | %s |\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status,
			orDash(run.Engine),
			run.CharCount,
			formatRunDuration(run),
			run.InputPath,
		)
	}

	failed := failedRuns(runs)
	if len(failed) > 0 {
		fmt.Fprintf(out, "\n## Failures (%d)\n\n", len(failed))
		for _, run := range failed {
			fmt.Fprintf(out, "- **#%d** %s: %s\n", run.ID, run.InputPath, run.Error)
		}
	}

	return nil
}

// outputHistoryText outputs the runs in human-readable text format.
func outputHistoryText(out io.Writer, runs []history.Run) error {
	fmt.Fprintf(out, "Extraction history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %-9s  %-7s  %-7s  %s\n",
		"ID", "Date", "Status", "Engine", "Chars", "Time", "Input")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 75))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-19s  %-8s  %-9s  %-7d  %-7s  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			orDash(run.Engine),
			run.CharCount,
			formatRunDuration(run),
			run.InputPath,
		)
		if run.Error != "" {
			fmt.Fprintf(out, "          %s\n", run.Error)
		}
	}

	return nil
}

// failedRuns filters the runs down to those with a recorded error.
func failedRuns(runs []history.Run) []history.Run {
	var failed []history.Run
	for _, run := range runs {
		if run.Error != "" {
			failed = append(failed, run)
		}
	}
	return failed
}

// formatRunDuration formats the recorded duration for display.
func formatRunDuration(run history.Run) string {
	return fmt.Sprintf("%.1fs", float64(run.DurationMS)/1000.0)
}

// orDash substitutes a dash for an empty column value.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
