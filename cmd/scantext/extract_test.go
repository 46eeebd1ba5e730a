package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/correct"
	"github.com/louvel/scantext/internal/log"
	"github.com/louvel/scantext/internal/model"
	"github.com/louvel/scantext/internal/pipeline"
)

// writeConfigFile writes a config file with the given content into a
// fresh temp directory and returns its path. Tests always name a config
// file explicitly so the ambient search locations never leak in.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scantext.yml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildExtractConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults without flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewExtractCmd()
		if err := cmd.Flags().Set("config", writeConfigFile(t, "")); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildExtractConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Language != config.DefaultLanguage {
			t.Errorf("Language = %q, want %q", cfg.Language, config.DefaultLanguage)
		}
		if cfg.Zoom != config.DefaultZoom {
			t.Errorf("Zoom = %v, want %v", cfg.Zoom, config.DefaultZoom)
		}
		if !cfg.AngleCorrection {
			t.Error("expected AngleCorrection to default to true")
		}
		if cfg.Clean {
			t.Error("expected Clean to default to false")
		}
		if len(cfg.Inputs) != 0 {
			t.Errorf("expected no inputs, got %v", cfg.Inputs)
		}
	})

	t.Run("config file values apply", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "language: fra\nzoom: 3.5\nclean: true\nhistory:\n  disabled: true\n")

		cmd := NewExtractCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildExtractConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Language != "fra" {
			t.Errorf("Language = %q, want %q", cfg.Language, "fra")
		}
		if cfg.Zoom != 3.5 {
			t.Errorf("Zoom = %v, want 3.5", cfg.Zoom)
		}
		if !cfg.Clean {
			t.Error("expected Clean from config file")
		}
		if !cfg.HistoryDisabled {
			t.Error("expected HistoryDisabled from config file")
		}
	})

	t.Run("flags beat the config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "language: fra\nzoom: 3.5\nclean: true\n")

		cmd := NewExtractCmd()
		for flag, value := range map[string]string{
			"config": path,
			"lang":   "deu",
			"zoom":   "1.5",
			"clean":  "false",
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatal(err)
			}
		}

		cfg, err := buildExtractConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Language != "deu" {
			t.Errorf("Language = %q, want %q", cfg.Language, "deu")
		}
		if cfg.Zoom != 1.5 {
			t.Errorf("Zoom = %v, want 1.5", cfg.Zoom)
		}
		if cfg.Clean {
			t.Error("expected --clean=false to override the config file")
		}
	})

	t.Run("explicitly named but missing config file errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewExtractCmd()
		missing := filepath.Join(t.TempDir(), "nope.yml")
		if err := cmd.Flags().Set("config", missing); err != nil {
			t.Fatal(err)
		}

		_, err := buildExtractConfig(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected a not-found error, got %v", err)
		}
	})

	t.Run("file flags and positional arguments combine", func(t *testing.T) {
		t.Parallel()

		cmd := NewExtractCmd()
		if err := cmd.Flags().Set("config", writeConfigFile(t, "")); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("file", "a.pdf"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("file", "b.png"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildExtractConfig(cmd, []string{"c.jpg"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"a.pdf", "b.png", "c.jpg"}
		if len(cfg.Inputs) != len(want) {
			t.Fatalf("Inputs = %v, want %v", cfg.Inputs, want)
		}
		for i := range want {
			if cfg.Inputs[i] != want[i] {
				t.Errorf("Inputs[%d] = %q, want %q", i, cfg.Inputs[i], want[i])
			}
		}
	})

	t.Run("no-angle disables orientation detection", func(t *testing.T) {
		t.Parallel()

		cmd := NewExtractCmd()
		if err := cmd.Flags().Set("config", writeConfigFile(t, "")); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("no-angle", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildExtractConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.AngleCorrection {
			t.Error("expected AngleCorrection to be disabled")
		}
	})
}

// testExtractConfig returns a config that never touches the user's real
// history database.
func testExtractConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.HistoryDisabled = true
	return cfg
}

func TestRunExtract(t *testing.T) {
	t.Parallel()

	logger := log.NewLogger(io.Discard, false)

	t.Run("missing file yields no valid input", func(t *testing.T) {
		t.Parallel()

		cfg := testExtractConfig()
		cfg.Inputs = []string{filepath.Join(t.TempDir(), "missing.pdf")}

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if !errors.Is(err, pipeline.ErrNoValidInput) {
			t.Errorf("expected ErrNoValidInput, got %v", err)
		}
	})

	t.Run("unsupported extension yields no valid input", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("plain text"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := testExtractConfig()
		cfg.Inputs = []string{path}

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if !errors.Is(err, pipeline.ErrNoValidInput) {
			t.Errorf("expected ErrNoValidInput, got %v", err)
		}
	})

	t.Run("invalid page selection fails before processing", func(t *testing.T) {
		t.Parallel()

		cfg := testExtractConfig()
		cfg.Inputs = []string{"whatever.pdf"}
		cfg.Pages = "1,abc"

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if err == nil || !strings.Contains(err.Error(), "invalid page selection") {
			t.Errorf("expected a page selection error, got %v", err)
		}
	})

	t.Run("missing word list fails before processing", func(t *testing.T) {
		t.Parallel()

		cfg := testExtractConfig()
		cfg.Inputs = []string{"whatever.pdf"}
		cfg.Clean = true
		cfg.DictionaryPath = filepath.Join(t.TempDir(), "missing-words.txt")

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if err == nil || !strings.Contains(err.Error(), "failed to load word list") {
			t.Errorf("expected a word list error, got %v", err)
		}
	})

	t.Run("ai correction without a key fails before processing", func(t *testing.T) {
		t.Parallel()

		cfg := testExtractConfig()
		cfg.Inputs = []string{"whatever.pdf"}
		cfg.AICorrect = true
		cfg.AIKeyEnv = "SCANTEXT_TEST_MISSING_KEY"

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if !errors.Is(err, correct.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("unreadable document fails the run", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.pdf")
		if err := os.WriteFile(path, []byte("this is not a pdf"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := testExtractConfig()
		cfg.Inputs = []string{path}

		var out, errOut bytes.Buffer
		err := runExtract(context.Background(), cfg, logger, &out, &errOut)
		if err == nil {
			t.Error("expected an error for an unreadable document")
		}
	})
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	t.Run("single report writes bare text", func(t *testing.T) {
		t.Parallel()

		r := model.NewExtractionReport("a.pdf")
		r.SetText("hello world")

		var buf bytes.Buffer
		if err := writeText(testExtractConfig(), []*model.ExtractionReport{r}, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "hello world\n" {
			t.Errorf("output = %q, want %q", buf.String(), "hello world\n")
		}
	})

	t.Run("batch writes one named block per file", func(t *testing.T) {
		t.Parallel()

		a := model.NewExtractionReport("docs/a.pdf")
		a.SetText("alpha")
		b := model.NewExtractionReport("docs/b.png")
		b.SetText("beta")

		var buf bytes.Buffer
		if err := writeText(testExtractConfig(), []*model.ExtractionReport{a, b}, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "-- a.pdf --\nalpha\n\n-- b.png --\nbeta\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("output file is created with parent directories", func(t *testing.T) {
		t.Parallel()

		r := model.NewExtractionReport("a.pdf")
		r.SetText("alpha")

		cfg := testExtractConfig()
		cfg.OutputPath = filepath.Join(t.TempDir(), "nested", "out.txt")

		var buf bytes.Buffer
		if err := writeText(cfg, []*model.ExtractionReport{r}, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(cfg.OutputPath)
		if err != nil {
			t.Fatalf("failed to read output file: %v", err)
		}
		if string(data) != "alpha\n" {
			t.Errorf("file content = %q, want %q", string(data), "alpha\n")
		}

		info, err := os.Stat(cfg.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
		}

		if buf.Len() != 0 {
			t.Errorf("expected nothing on stdout, got %q", buf.String())
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.ExtractionReport {
		r := model.NewExtractionReport("invoice.pdf")
		r.SetText("hello")
		r.Finish()
		return r
	}

	t.Run("json report follows the extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "report.json")
		if err := writeReport(path, []*model.ExtractionReport{newReport()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !json.Valid(data) {
			t.Errorf("expected valid JSON, got %q", string(data))
		}
	})

	t.Run("markdown report follows the extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "report.md")
		if err := writeReport(path, []*model.ExtractionReport{newReport()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "invoice.pdf") {
			t.Errorf("expected report to mention the input, got %q", string(data))
		}
	})
}

func TestExtractionErr(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("render failed")

	okReport := func(path string) *model.ExtractionReport {
		r := model.NewExtractionReport(path)
		r.SetText("text")
		return r
	}
	failedReport := func(path string) *model.ExtractionReport {
		r := model.NewExtractionReport(path)
		r.Fail(sentinel)
		return r
	}

	t.Run("single success is clean", func(t *testing.T) {
		t.Parallel()
		if err := extractionErr([]*model.ExtractionReport{okReport("a.pdf")}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("single failure surfaces its own error", func(t *testing.T) {
		t.Parallel()
		err := extractionErr([]*model.ExtractionReport{failedReport("a.pdf")})
		if !errors.Is(err, sentinel) {
			t.Errorf("expected the report's error, got %v", err)
		}
	})

	t.Run("partial batch failure is not fatal", func(t *testing.T) {
		t.Parallel()
		reports := []*model.ExtractionReport{okReport("a.pdf"), failedReport("b.png")}
		if err := extractionErr(reports); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fully failed batch is fatal", func(t *testing.T) {
		t.Parallel()
		reports := []*model.ExtractionReport{failedReport("a.pdf"), failedReport("b.png")}
		if err := extractionErr(reports); err == nil {
			t.Error("expected an error when no file succeeded")
		}
	})
}

func TestProgressText(t *testing.T) {
	t.Parallel()

	t.Run("successful run shows chars and engine", func(t *testing.T) {
		t.Parallel()

		r := model.NewExtractionReport("a.pdf")
		r.SetText("hello")
		r.Engine = model.EngineOCR
		r.Duration = 2 * time.Second

		got := progressText(r)
		if !strings.Contains(got, "5 chars") || !strings.Contains(got, model.EngineOCR) {
			t.Errorf("progressText() = %q", got)
		}
	})

	t.Run("failed run shows the reason", func(t *testing.T) {
		t.Parallel()

		r := model.NewExtractionReport("a.pdf")
		r.Fail(errors.New("page 3 unreadable"))

		got := progressText(r)
		if !strings.Contains(got, "failed") || !strings.Contains(got, "page 3 unreadable") {
			t.Errorf("progressText() = %q", got)
		}
	})
}

func TestExtractCommand(t *testing.T) {
	t.Run("invalid page selection surfaces through the command", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{
			"extract",
			"--file", "whatever.pdf",
			"--pages", "1,abc",
			"--config", writeConfigFile(t, "history:\n  disabled: true\n"),
		})

		err := root.Execute()
		if err == nil || !strings.Contains(err.Error(), "invalid page selection") {
			t.Errorf("expected a page selection error, got %v", err)
		}
	})

	t.Run("missing input file surfaces through the command", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{
			"extract",
			"--file", filepath.Join(t.TempDir(), "missing.pdf"),
			"--config", writeConfigFile(t, "history:\n  disabled: true\n"),
		})

		err := root.Execute()
		if !errors.Is(err, pipeline.ErrNoValidInput) {
			t.Errorf("expected ErrNoValidInput, got %v", err)
		}
	})

	t.Run("quitting the picker exits cleanly", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)

		var out bytes.Buffer
		root := NewRootCmd()
		root.SetIn(strings.NewReader("q\n"))
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetArgs([]string{
			"extract",
			"--config", writeConfigFile(t, ""),
		})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "[1] a.png") {
			t.Errorf("expected the picker list, got %q", out.String())
		}
	})

	t.Run("no supported files in the directory is a usage error", func(t *testing.T) {
		t.Chdir(t.TempDir())

		var errOut bytes.Buffer
		root := NewRootCmd()
		root.SetIn(strings.NewReader(""))
		root.SetOut(io.Discard)
		root.SetErr(&errOut)
		root.SetArgs([]string{
			"extract",
			"--config", writeConfigFile(t, ""),
		})

		err := root.Execute()
		if !errors.Is(err, config.ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}
		if !strings.Contains(errOut.String(), "No supported files found") {
			t.Errorf("expected the no-files message, got %q", errOut.String())
		}
	})
}
