package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the behavior of the original command-line defaults where
// applicable and are safe starting points for most documents.
const (
	// DefaultZoom is the render zoom factor for the OCR fallback.
	// PDF pages render at 72 DPI at zoom 1.0, so the default of 2.0
	// produces 144 DPI bitmaps. That is enough for clean print scans;
	// noisy or small-print documents benefit from 3.0 or more at the
	// cost of memory and OCR time.
	DefaultZoom = 2.0

	// DefaultLanguage is the Tesseract language code used when neither
	// the config file nor the --lang flag specifies one. Language packs
	// are installed separately (e.g. tesseract-ocr-fra for French).
	DefaultLanguage = "eng"

	// DefaultServerAddr is the listen address for the HTTP API.
	// Port 5000 matches the original service deployment.
	DefaultServerAddr = ":5000"

	// DefaultMaxConcurrent is the number of OCR jobs the HTTP API runs
	// at once. Tesseract is CPU-bound and memory-hungry on large pages,
	// so requests queue for a slot rather than all recognizing at once.
	DefaultMaxConcurrent = 1

	// DefaultMaxUploadSize limits multipart upload size for the HTTP API.
	// 64MB covers large scanned PDFs while bounding memory usage.
	DefaultMaxUploadSize = 64 * 1024 * 1024 // 64MB

	// DefaultAIBaseURL is the OpenAI-compatible endpoint used for text
	// correction. Any server implementing /chat/completions works here,
	// including local ones.
	DefaultAIBaseURL = "https://api.openai.com/v1"

	// DefaultAIModel is the chat model asked to correct OCR output.
	DefaultAIModel = "gpt-4o-mini"

	// DefaultAIKeyEnv is the environment variable read for the AI API key.
	DefaultAIKeyEnv = "OPENAI_API_KEY"

	// DefaultHistoryLimit is the number of past runs the history command
	// shows when --limit is not given.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "scantext"
)

// Config holds all configuration options for scantext.
// This struct is populated from the config file and CLI flags and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., OCRConfig, ServerConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// The YAML file format is nested for readability; File.Apply flattens it.
type Config struct {
	// Inputs is the list of files to process, in the order given on the
	// command line. Order matters: combined output concatenates per-file
	// blocks in exactly this order.
	Inputs []string

	// OutputPath is the destination for extracted text.
	// When empty, text is written to stdout.
	OutputPath string

	// Language is the Tesseract language code (e.g. "eng", "fra").
	// Multiple languages can be combined with "+" (e.g. "eng+fra").
	Language string

	// Pages is the raw page selection expression (e.g. "1,3-5").
	// Empty means all pages. It only restricts the render+OCR fallback;
	// the embedded-text pass always reads the whole document.
	Pages string

	// Zoom is the render zoom factor for the OCR fallback.
	// Rendered DPI is 72 * Zoom.
	Zoom float64

	// Clean enables automatic cleanup of recognized text: ASCII folding,
	// common character confusions, spell correction, whitespace collapse.
	Clean bool

	// AngleCorrection enables the OCR engine's orientation detection so
	// rotated scans are still read. Disabled by --no-angle, which is a
	// little faster on documents known to be upright.
	AngleCorrection bool

	// Batch enables interactive multi-file selection when no --file is
	// given. With --file, passing several paths already implies batch
	// processing.
	Batch bool

	// AICorrect sends the extracted text to the configured AI endpoint
	// for a correction pass before output.
	AICorrect bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for scantext.yml in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// ReportFile is the output path for the run report.
	// Format follows the extension: .json produces JSON, .md produces
	// Markdown, anything else a plain-text summary. Empty means no
	// report is written.
	ReportFile string

	// DictionaryPath is an optional word list (one word per line) merged
	// into the spell-correction dictionary used by --clean.
	DictionaryPath string

	// HistoryDir is the directory holding the run history database.
	// Defaults to the XDG data directory. Runs are recorded there unless
	// HistoryDisabled is set.
	HistoryDir string

	// HistoryDisabled turns off run history recording entirely.
	HistoryDisabled bool

	// ServerAddr is the listen address for the serve command.
	ServerAddr string

	// ServerMaxConcurrent caps concurrent OCR jobs in the HTTP API.
	ServerMaxConcurrent int

	// MaxUploadSize is the multipart upload limit in bytes for the API.
	MaxUploadSize int64

	// AIBaseURL is the OpenAI-compatible endpoint for text correction.
	AIBaseURL string

	// AIModel is the chat model used for text correction.
	AIModel string

	// AIKeyEnv names the environment variable holding the AI API key.
	// The key itself never appears in the config file.
	AIKeyEnv string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., zoom, language,
// angle correction). This also serves as documentation of the defaults.
func NewConfig() *Config {
	return &Config{
		Language:            DefaultLanguage,
		Zoom:                DefaultZoom,
		AngleCorrection:     true,
		HistoryDir:          XDGDataDir(),
		ServerAddr:          DefaultServerAddr,
		ServerMaxConcurrent: DefaultMaxConcurrent,
		MaxUploadSize:       DefaultMaxUploadSize,
		AIBaseURL:           DefaultAIBaseURL,
		AIModel:             DefaultAIModel,
		AIKeyEnv:            DefaultAIKeyEnv,
	}
}

// XDGDataDir returns the XDG data directory for scantext.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/scantext
// On macOS: ~/Library/Application Support/scantext
// On Windows: %LOCALAPPDATA%\scantext
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for scantext.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/scantext
// On macOS: ~/Library/Application Support/scantext
// On Windows: %APPDATA%\scantext
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SplitLanguage splits a combined language code like "eng+fra" into its
// individual Tesseract codes. Whitespace is trimmed and empty parts are
// dropped, so "eng+" yields just ["eng"].
func SplitLanguage(lang string) []string {
	parts := strings.Split(lang, "+")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// XDGCacheDir returns the XDG cache directory for scantext.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/scantext
// On macOS: ~/Library/Caches/scantext
// On Windows: %LOCALAPPDATA%\scantext\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any extraction begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one input file to process
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	// Zoom must be positive; zero or negative zoom cannot render anything
	if c.Zoom <= 0 {
		return ErrInvalidZoom
	}

	// Language must be set; Tesseract has no usable "no language" mode
	if c.Language == "" {
		return ErrNoLanguage
	}

	// The API must be allowed to run at least one OCR job
	if c.ServerMaxConcurrent <= 0 {
		return ErrInvalidConcurrency
	}

	// Upload limit must be positive if the server is ever started
	if c.MaxUploadSize <= 0 {
		return ErrInvalidUploadSize
	}

	return nil
}
