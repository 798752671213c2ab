// Package notify enriches a structured report with best-effort side effects.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/observability"
	"github.com/spherical-ai/labvoice/internal/telephony"
)

// Synthesizer is the speech vendor boundary.
type Synthesizer interface {
	GenerateAudio(ctx context.Context, text, voiceID string) (string, error)
}

// Caller is the telephony vendor boundary.
type Caller interface {
	Notify(ctx context.Context, req telephony.NotifyRequest) (string, error)
}

// Orchestrator runs the audio and call side effects for a decoded report.
// Neither effect may fail the request or touch the medical fields: outcomes
// land in the report's audio_id/audio_error and call_id/call_error fields.
type Orchestrator struct {
	speech          Synthesizer
	phone           Caller
	voiceID         string
	recipientNumber string
	senderNumber    string
	logger          *observability.Logger
}

// New creates an orchestrator over the given vendor boundaries.
func New(speech Synthesizer, phone Caller, voiceID, recipientNumber, senderNumber string, logger *observability.Logger) *Orchestrator {
	return &Orchestrator{
		speech:          speech,
		phone:           phone,
		voiceID:         voiceID,
		recipientNumber: recipientNumber,
		senderNumber:    senderNumber,
		logger:          logger.WithComponent("notify"),
	}
}

// Enrich attempts audio synthesis, then the call. Audio runs first so a
// generated audio URL can be reused by the call instead of a second speech
// render; when audio failed, the call falls back to speaking the summary.
func (o *Orchestrator) Enrich(ctx context.Context, report *domain.StructuredReport) *domain.StructuredReport {
	log := o.logger.WithSession(report.ChatID)

	audioURL, err := o.speech.GenerateAudio(ctx, Narration(report), o.voiceID)
	if err != nil {
		log.Warn().Err(err).Msg("Audio synthesis failed, attaching error to report")
		report.AudioError = err.Error()
	} else {
		report.AudioID = audioURL
	}

	// A non-empty id with an error means the call was placed but the
	// companion SMS failed; both land on the report.
	callID, err := o.phone.Notify(ctx, telephony.NotifyRequest{
		RecipientNumber: o.recipientNumber,
		SenderNumber:    o.senderNumber,
		Body:            report.Summary,
		AudioURL:        audioURL,
	})
	if callID != "" {
		report.CallID = callID
	}
	if err != nil {
		log.Warn().Err(err).Msg("Call notification failed, attaching error to report")
		report.CallError = err.Error()
	}

	return report
}

// Narration composes the spoken text from the report sections.
func Narration(report *domain.StructuredReport) string {
	return fmt.Sprintf("%s\nCritical Observations:\n%s\n\nPrecautions:\n%s",
		report.Summary,
		strings.Join(report.CriticalObservations, "\n"),
		report.Precautions,
	)
}
