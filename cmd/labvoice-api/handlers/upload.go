// Package handlers provides HTTP handlers for the lab report API.
package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/extract"
	"github.com/spherical-ai/labvoice/internal/observability"
)

// TextExtractor is the rasterize+OCR stage.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// ReportBuilder is the LLM extraction stage.
type ReportBuilder interface {
	BuildReport(ctx context.Context, text, patientName, chatID string) (*extract.Outcome, error)
}

// Enricher is the best-effort notification stage.
type Enricher interface {
	Enrich(ctx context.Context, report *domain.StructuredReport) *domain.StructuredReport
}

// UploadHandler drives the document understanding pipeline for one upload.
type UploadHandler struct {
	logger         *observability.Logger
	extractor      TextExtractor
	reports        ReportBuilder
	enricher       Enricher
	tempDir        string
	maxUploadBytes int64
}

// NewUploadHandler creates the upload handler.
func NewUploadHandler(logger *observability.Logger, extractor TextExtractor, reports ReportBuilder, enricher Enricher, tempDir string, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		logger:         logger.WithComponent("upload"),
		extractor:      extractor,
		reports:        reports,
		enricher:       enricher,
		tempDir:        tempDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /upload. The session id is generated before any work
// so it is present even on fallback paths; the temp file is removed on every
// exit path.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now()

	chatID := domain.NewSessionID()
	log := h.logger.WithSession(chatID)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "a PDF file upload is required", err.Error())
		return
	}
	defer file.Close()

	pdfPath := filepath.Join(h.tempDir, fmt.Sprintf("temp_%s.pdf", strings.ReplaceAll(uuid.New().String(), "-", "")))
	if err := writeTempFile(pdfPath, file); err != nil {
		log.Error().Err(err).Msg("Failed to persist upload")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	defer os.Remove(pdfPath)

	log.Info().Str("filename", header.Filename).Int64("size", header.Size).Msg("Processing lab report upload")

	text, err := h.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		log.Error().Err(err).Msg("Text extraction failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	patientName := extract.PatientName(text)

	outcome, err := h.reports.BuildReport(ctx, text, patientName, chatID)
	if err != nil {
		log.Error().Err(err).Msg("Report extraction failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	switch {
	case outcome.Fallback != nil:
		log.Info().Dur("elapsed", time.Since(started)).Msg("Returning raw fallback")
		writeJSON(w, http.StatusOK, outcome.Fallback)
	case outcome.ParseFailure != nil:
		log.Info().Dur("elapsed", time.Since(started)).Msg("Returning parse failure payload")
		writeJSON(w, http.StatusOK, outcome.ParseFailure)
	default:
		report := h.enricher.Enrich(ctx, outcome.Report)
		log.Info().Dur("elapsed", time.Since(started)).Msg("Returning structured report")
		writeJSON(w, http.StatusOK, report)
	}
}

// writeTempFile copies the upload to a scoped temp file. A failed copy
// removes the partial file so no exit path leaves it behind.
func writeTempFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return domain.IOError("failed to create temp file", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return domain.IOError("failed to write temp file", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return domain.IOError("failed to write temp file", err)
	}
	return nil
}
