// Package extract turns OCR text into a structured patient-facing report.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/observability"
)

// Completer is the LLM boundary: one free-text prompt in, one free-text
// completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// fencedJSON locates a fenced code block labeled json inside the raw
// response, non-greedy and multi-line aware.
var fencedJSON = regexp.MustCompile("(?s)```json\n(.*?)\n```")

// Extractor builds the analysis prompt and decodes the LLM response.
type Extractor struct {
	llm    Completer
	logger *observability.Logger
}

// NewExtractor creates a report extractor over the given LLM.
func NewExtractor(llm Completer, logger *observability.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger.WithComponent("extract")}
}

// Outcome is the result of a report extraction. Exactly one field is
// non-nil: the decode either produces a structured report, falls back to
// the verbatim response, or captures a parse failure as data.
type Outcome struct {
	Report       *domain.StructuredReport
	Fallback     *domain.RawFallback
	ParseFailure *domain.ParseFailure
}

// reportPayload is the JSON shape the prompt asks the model to return.
type reportPayload struct {
	KeyMedicalTerms      []string `json:"key_medical_terms"`
	Summary              string   `json:"summary"`
	CriticalObservations []string `json:"critical_observations"`
	Precautions          string   `json:"precautions"`
}

// BuildReport prompts the LLM with the OCR text and patient name, then
// decodes the response. LLM transport failures are returned as errors;
// malformed model output never is — it degrades to Fallback or ParseFailure
// so the caller always has something to present.
func (e *Extractor) BuildReport(ctx context.Context, text, patientName, chatID string) (*Outcome, error) {
	prompt := buildPrompt(text, patientName)

	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	match := fencedJSON.FindStringSubmatch(raw)
	if match == nil {
		e.logger.Warn().Str("chat_id", chatID).Msg("No fenced JSON block in LLM response, returning raw output")
		return &Outcome{Fallback: &domain.RawFallback{ChatID: chatID, RawOutput: raw}}, nil
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &payload); err != nil {
		e.logger.Warn().Str("chat_id", chatID).Err(err).Msg("Fenced block is not valid JSON")
		return &Outcome{ParseFailure: &domain.ParseFailure{
			ChatID:    chatID,
			Err:       err.Error(),
			RawOutput: match[1],
		}}, nil
	}

	report := &domain.StructuredReport{
		KeyMedicalTerms:      payload.KeyMedicalTerms,
		Summary:              payload.Summary,
		CriticalObservations: payload.CriticalObservations,
		Precautions:          payload.Precautions,
		ChatID:               chatID,
	}
	if report.CriticalObservations == nil {
		report.CriticalObservations = []string{}
	}
	if report.KeyMedicalTerms == nil {
		report.KeyMedicalTerms = []string{}
	}

	return &Outcome{Report: report}, nil
}

// buildPrompt creates the lab report analysis prompt.
func buildPrompt(text, patientName string) string {
	return fmt.Sprintf(`
    You are a medical assistant. Analyze the following medical lab report.

    Return structured JSON with:
    - key_medical_terms: important terms (e.g., Hemoglobin, Glucose)
    - summary: speak directly to the patient, starting with "Hello Mr. %s, ..." (3-4 lines)
    - critical_observations: list of abnormal results or issues
    - precautions: friendly, clear advice for the patient

    Be conversational, simple, and helpful.

    Lab Report Text:
    %s
    `, patientName, text)
}
