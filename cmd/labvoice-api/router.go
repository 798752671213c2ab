// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/labvoice/cmd/labvoice-api/handlers"
	"github.com/spherical-ai/labvoice/cmd/labvoice-api/middleware"
	"github.com/spherical-ai/labvoice/internal/config"
	"github.com/spherical-ai/labvoice/internal/extract"
	"github.com/spherical-ai/labvoice/internal/llm"
	"github.com/spherical-ai/labvoice/internal/notify"
	"github.com/spherical-ai/labvoice/internal/observability"
	"github.com/spherical-ai/labvoice/internal/ocr"
	"github.com/spherical-ai/labvoice/internal/pdf"
	"github.com/spherical-ai/labvoice/internal/speech"
	"github.com/spherical-ai/labvoice/internal/telephony"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"labvoice"}`))
	})

	// Create service dependencies
	engine := ocr.NewTesseract(ocr.WithTessdataDir(cfg.Pipeline.TessdataDir))
	converter := pdf.NewConverter(cfg.Pipeline.RenderDPI, engine)

	completer := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.Timeout)
	extractor := extract.NewExtractor(completer, logger)

	speechClient := speech.NewClient(cfg.Speech.APIKey, cfg.Speech.APIBase, cfg.Speech.Timeout)
	phoneClient := telephony.NewClient(cfg.Telephony.AccountSID, cfg.Telephony.AuthToken, cfg.Telephony.APIBase, cfg.Telephony.Timeout)

	orchestrator := notify.New(speechClient, phoneClient, cfg.Speech.VoiceID,
		cfg.Telephony.RecipientNumber, cfg.Telephony.SenderNumber, logger)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(logger, converter, extractor, orchestrator,
		cfg.Pipeline.TempDir, cfg.Server.MaxUploadBytes)
	speechHandler := handlers.NewSpeechHandler(logger, speechClient, speechClient, cfg.Speech.VoiceID)
	callHandler := handlers.NewCallHandler(logger, phoneClient,
		cfg.Telephony.RecipientNumber, cfg.Telephony.SenderNumber)

	r.Post("/upload", uploadHandler.Upload)
	r.Post("/tts", speechHandler.TTS)
	r.Post("/call", callHandler.Call)
	r.Post("/translate", speechHandler.Translate)

	return r
}
