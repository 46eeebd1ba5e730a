package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/model"
	"github.com/louvel/scantext/internal/pipeline"
)

// multipartMemory is the in-memory threshold for multipart parsing.
// Parts beyond it spill to disk; the total is capped by MaxUploadSize.
const multipartMemory = 32 << 20 // 32MB

// extractionParams are the per-request knobs for POST /api/v1/extract,
// defaulted from the server configuration. The same struct is echoed
// back in the response so callers see what was actually applied.
type extractionParams struct {
	// Zoom is the render zoom factor for the OCR fallback.
	Zoom float64 `json:"zoom"`

	// Language is the OCR language code (e.g. "eng", "fra+eng").
	Language string `json:"lang"`

	// Pages restricts which PDF pages the OCR fallback renders.
	Pages string `json:"pages,omitempty"`

	// UseAngle enables the engine's orientation detection.
	UseAngle bool `json:"use_angle"`

	// UseGPU is accepted for compatibility and ignored; recognition
	// always runs on the CPU. It is echoed back so callers notice.
	UseGPU bool `json:"use_gpu"`

	// Clean enables the text cleanup pass.
	Clean bool `json:"clean"`

	// ApplyAICorrection enables the AI correction pass.
	ApplyAICorrection bool `json:"apply_ai_correction"`
}

// extractResponse is the success payload for POST /api/v1/extract.
type extractResponse struct {
	// Status is always "ok" for successful extractions.
	Status string `json:"status"`

	// Filename is the uploaded file's name as sent by the client.
	Filename string `json:"filename"`

	// Seconds is the processing time including any correction pass.
	Seconds float64 `json:"seconds"`

	// Params echoes the parameters the extraction ran with.
	Params extractionParams `json:"params"`

	// Engine records where the text came from ("embedded", "ocr").
	Engine string `json:"engine"`

	// Text is the extracted text.
	Text string `json:"text"`

	// History reports the run history insert: "ok", "skipped" when
	// recording is disabled, or "error" when the insert failed.
	History string `json:"history"`
}

// handleHealth confirms the API is up.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract accepts a single multipart file upload, runs it through
// the extraction pipeline, and returns the text.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds the %d byte limit", s.cfg.MaxUploadSize))
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Best effort temp cleanup
	}()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "file is required (multipart/form-data with 'file' field)")
		return
	}
	if len(files) != 1 {
		s.respondError(w, http.StatusBadRequest, "only one file allowed")
		return
	}

	upload := files[0]
	if strings.TrimSpace(upload.Filename) == "" {
		s.respondError(w, http.StatusBadRequest, "file name is empty")
		return
	}

	params := s.parseParams(r.Form)

	pages, err := model.ParsePageRange(params.Pages)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid pages selection: "+err.Error())
		return
	}

	if params.ApplyAICorrection && s.corrector == nil {
		s.respondError(w, http.StatusBadRequest, "ai correction not available on this server")
		return
	}

	// The cap keeps concurrent recognition jobs from starving each
	// other; waiting requests give up when the client goes away.
	if err := s.sem.Acquire(r.Context(), 1); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "server is busy")
		return
	}
	defer s.sem.Release(1)

	tempPath, cleanup, err := s.saveUpload(upload)
	if err != nil {
		s.logger.Error("failed to store upload", "filename", upload.Filename, "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer cleanup()

	extractionCfg := pipeline.ExtractionConfig{
		Zoom:              params.Zoom,
		Languages:         config.SplitLanguage(params.Language),
		Pages:             pages,
		DetectOrientation: params.UseAngle,
	}
	if params.Clean {
		extractionCfg.Cleaner = s.cleaner
	}

	report := extractionCfg.NewReport(tempPath)
	p := pipeline.NewExtraction(s.engine, extractionCfg, pipeline.WithLogger(s.logger))

	_ = p.Execute(r.Context(), report) //nolint:errcheck // Error is stored in report

	// History and responses should show the uploaded name, not the
	// temp path the pipeline read from.
	report.InputPath = upload.Filename

	if report.Failed() {
		s.recordRun(r.Context(), report)
		s.respondError(w, http.StatusInternalServerError, report.ErrorMessage)
		return
	}

	if params.ApplyAICorrection {
		corrected, err := s.corrector.Correct(r.Context(), report.Text)
		if err != nil {
			report.Fail(fmt.Errorf("ai correction failed: %w", err))
			report.Finish()
			s.recordRun(r.Context(), report)
			s.respondError(w, http.StatusBadGateway, report.ErrorMessage)
			return
		}
		report.SetText(corrected)
		report.AICorrected = true
		report.Finish()
	}

	history := s.recordRun(r.Context(), report)

	s.respondJSON(w, http.StatusOK, extractResponse{
		Status:   "ok",
		Filename: upload.Filename,
		Seconds:  report.Seconds,
		Params:   params,
		Engine:   report.Engine,
		Text:     report.Text,
		History:  history,
	})
}

// parseParams reads the extraction knobs from the form, falling back to
// the server configuration for anything absent.
func (s *Server) parseParams(form url.Values) extractionParams {
	zoom := parseFloat(form.Get("zoom"), s.cfg.Zoom)
	if zoom <= 0 {
		zoom = s.cfg.Zoom
	}

	lang := strings.TrimSpace(form.Get("lang"))
	if lang == "" {
		lang = s.cfg.Language
	}

	return extractionParams{
		Zoom:              zoom,
		Language:          lang,
		Pages:             strings.TrimSpace(form.Get("pages")),
		UseAngle:          parseBool(form.Get("use_angle"), s.cfg.AngleCorrection),
		UseGPU:            parseBool(form.Get("use_gpu"), false),
		Clean:             parseBool(form.Get("clean"), s.cfg.Clean),
		ApplyAICorrection: parseBool(form.Get("apply_ai_correction"), false),
	}
}

// saveUpload stores the uploaded file under a fresh temp directory,
// keeping the original name so kind detection sees the extension.
// The returned cleanup removes the directory and its contents.
func (s *Server) saveUpload(upload *multipart.FileHeader) (string, func(), error) {
	src, err := upload.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close() //nolint:errcheck // Read-only handle

	dir, err := os.MkdirTemp("", "scantext_api_")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove temp upload dir", "dir", dir, "error", err)
		}
	}

	name := filepath.Base(upload.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		cleanup()
		return "", nil, fmt.Errorf("unusable file name: %q", upload.Filename)
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path) //nolint:gosec // Name is flattened by filepath.Base above
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close() //nolint:errcheck // Write error takes precedence
		cleanup()
		return "", nil, fmt.Errorf("failed to save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to save upload: %w", err)
	}

	return path, cleanup, nil
}

// recordRun persists the report to history and reports how that went:
// "ok", "error", or "skipped" when recording is disabled.
func (s *Server) recordRun(ctx context.Context, report *model.ExtractionReport) string {
	if s.recorder == nil {
		return "skipped"
	}
	if err := s.recorder.Record(ctx, report); err != nil {
		s.logger.Warn("failed to record run history",
			"input", report.InputPath,
			"error", err,
		)
		return "error"
	}
	return "ok"
}

// parseBool interprets flexible form booleans. An absent value falls
// back to the default; anything present is true only for one of
// 1, true, yes, y, on (case-insensitive).
func parseBool(value string, def bool) bool {
	if value == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// parseFloat parses a form float, falling back to the default when the
// value is absent or malformed.
func parseFloat(value string, def float64) float64 {
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return f
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) //nolint:errcheck // Client is gone if this fails
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
