package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/labvoice/internal/config"
	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/extract"
	"github.com/spherical-ai/labvoice/internal/llm"
	"github.com/spherical-ai/labvoice/internal/notify"
	"github.com/spherical-ai/labvoice/internal/observability"
	"github.com/spherical-ai/labvoice/internal/ocr"
	"github.com/spherical-ai/labvoice/internal/pdf"
	"github.com/spherical-ai/labvoice/internal/speech"
	"github.com/spherical-ai/labvoice/internal/telephony"
)

var summarizeNotify bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.pdf>",
	Short: "Extract a structured summary from a lab report PDF",
	Long: `Summarize renders the PDF pages, runs OCR over them, and asks the
language model for a patient-friendly structured summary. With --notify
the summary is also synthesized to audio and delivered as a phone call
plus SMS.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeNotify, "notify", false, "synthesize audio and place the patient call")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := "error"
	if verbose {
		logLevel = cfg.Observability.LogLevel
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       logLevel,
		Format:      "console",
		ServiceName: "labvoice",
	})

	pdfPath := args[0]
	chatID := domain.NewSessionID()

	if !jsonOut {
		section("Lab Report Summary")
		info("Report: %s", pdfPath)
		info("Session: %s", chatID)
	}

	engine := ocr.NewTesseract(ocr.WithTessdataDir(cfg.Pipeline.TessdataDir))
	converter := pdf.NewConverter(cfg.Pipeline.RenderDPI, engine)

	text, err := converter.ExtractText(ctx, pdfPath)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	patientName := extract.PatientName(text)
	if !jsonOut {
		info("Patient: %s", patientName)
	}

	completer := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.Timeout)
	extractor := extract.NewExtractor(completer, logger)

	outcome, err := extractor.BuildReport(ctx, text, patientName, chatID)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	switch {
	case outcome.Fallback != nil:
		if jsonOut {
			return printJSON(outcome.Fallback)
		}
		warning("The model returned no structured block; raw output follows")
		fmt.Println(outcome.Fallback.RawOutput)
		return nil

	case outcome.ParseFailure != nil:
		if jsonOut {
			return printJSON(outcome.ParseFailure)
		}
		fail("Structured block did not parse: %s", outcome.ParseFailure.Err)
		fmt.Println(outcome.ParseFailure.RawOutput)
		return nil
	}

	report := outcome.Report
	if summarizeNotify {
		speechClient := speech.NewClient(cfg.Speech.APIKey, cfg.Speech.APIBase, cfg.Speech.Timeout)
		phoneClient := telephony.NewClient(cfg.Telephony.AccountSID, cfg.Telephony.AuthToken, cfg.Telephony.APIBase, cfg.Telephony.Timeout)
		orchestrator := notify.New(speechClient, phoneClient, cfg.Speech.VoiceID,
			cfg.Telephony.RecipientNumber, cfg.Telephony.SenderNumber, logger)
		report = orchestrator.Enrich(ctx, report)
	}

	if jsonOut {
		return printJSON(report)
	}

	section("Structured Report")
	keyValue("Key Medical Terms", strings.Join(report.KeyMedicalTerms, ", "))
	keyValue("Summary", report.Summary)
	keyValue("Critical Observations", strings.Join(report.CriticalObservations, "; "))
	keyValue("Precautions", report.Precautions)
	keyValue("Session", report.ChatID)

	if summarizeNotify {
		fmt.Println()
		if report.AudioError != "" {
			warning("Audio synthesis failed: %s", report.AudioError)
		} else {
			success("Audio generated: %s", report.AudioID)
		}
		if report.CallError != "" {
			warning("Patient call failed: %s", report.CallError)
		} else {
			success("Call placed: %s", report.CallID)
		}
	}

	return nil
}

func printJSON(payload interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
