package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/louvel/scantext/internal/model"
)

// dbFileName is the database file created inside the history directory.
const dbFileName = "history.db"

// Store provides SQLite-based storage for extraction run history.
// Every processed input leaves one row recording what was processed,
// with which parameters, and how it ended.
//
// Design decision: We use a single database file in the user's data
// directory rather than per-project files. Run history is a personal
// audit trail; one file keeps queries over all past work trivial.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history store in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, dbFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("history database not found at %s: %w", dbPath, os.ErrNotExist)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Run records store one row per processed input file
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		input_path TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		engine TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		lang TEXT NOT NULL DEFAULT '',
		zoom REAL NOT NULL DEFAULT 0,
		pages TEXT NOT NULL DEFAULT '',
		clean INTEGER NOT NULL DEFAULT 0,
		ai_corrected INTEGER NOT NULL DEFAULT 0,
		char_count INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_path);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Run represents one recorded extraction run. The JSON tags shape the
// output of `scantext history --format json`.
type Run struct {
	// ID is the unique row identifier.
	ID int64 `json:"id"`

	// StartedAt is when processing began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when processing ended.
	FinishedAt time.Time `json:"finished_at"`

	// InputPath is the file that was processed.
	InputPath string `json:"input"`

	// Kind is the detected document kind name ("pdf", "image").
	Kind string `json:"kind"`

	// Engine records where the text came from ("embedded", "ocr").
	Engine string `json:"engine"`

	// Status is the run outcome.
	Status model.Status `json:"status"`

	// Language is the OCR language code used.
	Language string `json:"lang"`

	// Zoom is the render zoom factor used.
	Zoom float64 `json:"zoom"`

	// Pages is the page selection expression ("all" or e.g. "1,3-5").
	Pages string `json:"pages"`

	// Clean records whether the cleanup pass ran.
	Clean bool `json:"clean"`

	// AICorrected records whether the AI correction pass ran.
	AICorrected bool `json:"ai_corrected"`

	// CharCount is the number of characters the run produced.
	CharCount int `json:"char_count"`

	// DurationMS is the processing time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Error is the failure or skip reason, empty for clean runs.
	Error string `json:"error,omitempty"`
}

// Record stores one finished report as a history row. It implements the
// pipeline's RunRecorder interface, so skipped and failed runs are
// recorded the same way successful ones are.
func (s *Store) Record(ctx context.Context, report *model.ExtractionReport) error {
	query := `
	INSERT INTO runs (started_at, finished_at, input_path, kind, engine, status,
		lang, zoom, pages, clean, ai_corrected, char_count, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	started := report.StartedAt.UTC()
	finished := started.Add(report.Duration)

	_, err := s.db.ExecContext(ctx, query,
		started.Format(time.RFC3339Nano),
		finished.Format(time.RFC3339Nano),
		report.InputPath,
		report.KindName,
		report.Engine,
		report.StatusName,
		report.Language,
		report.Zoom,
		report.PagesExpr,
		report.CleanApplied,
		report.AICorrected,
		report.CharCount,
		report.Duration.Milliseconds(),
		report.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// runColumns is the column list shared by the query methods, in the
// order scanRun expects.
const runColumns = `id, started_at, finished_at, input_path, kind, engine, status,
	lang, zoom, pages, clean, ai_corrected, char_count, duration_ms, error`

// Recent returns the most recent runs, newest first.
// A limit of zero or less returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}

	query := `SELECT ` + runColumns + `
	FROM runs
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ForPath returns the most recent runs for one input path, newest first.
// A limit of zero or less returns all matching runs.
func (s *Store) ForPath(ctx context.Context, path string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT ` + runColumns + `
	FROM runs
	WHERE input_path = ?
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for path: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// collectRuns drains a result set into Run values.
func collectRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanRun reads one result row into a Run.
func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var started, finished, status string

	err := rows.Scan(
		&run.ID,
		&started,
		&finished,
		&run.InputPath,
		&run.Kind,
		&run.Engine,
		&status,
		&run.Language,
		&run.Zoom,
		&run.Pages,
		&run.Clean,
		&run.AICorrected,
		&run.CharCount,
		&run.DurationMS,
		&run.Error,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	run.Status = model.ParseStatus(status)
	return run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // The format Record writes
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
