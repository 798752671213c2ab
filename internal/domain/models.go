// Package domain holds the entities shared across the lab report pipeline.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// StructuredReport is the primary output of a successful upload: the parsed
// LLM summary plus the session id and the side-channel outcomes attached by
// the notification step.
type StructuredReport struct {
	KeyMedicalTerms      []string `json:"key_medical_terms"`
	Summary              string   `json:"summary"`
	CriticalObservations []string `json:"critical_observations"`
	Precautions          string   `json:"precautions"`
	ChatID               string   `json:"chat_id"`

	AudioID    string `json:"audio_id,omitempty"`
	AudioError string `json:"audio_error,omitempty"`
	CallID     string `json:"call_id,omitempty"`
	CallError  string `json:"call_error,omitempty"`
}

// RawFallback carries the verbatim LLM response when it contains no fenced
// JSON block. Terminal: no further processing happens on it.
type RawFallback struct {
	ChatID    string `json:"chat_id"`
	RawOutput string `json:"raw_output"`
}

// ParseFailure carries a fenced block that was found but did not parse as
// JSON. Returned as data so the caller decides how to surface it.
type ParseFailure struct {
	ChatID    string `json:"chat_id"`
	Err       string `json:"error"`
	RawOutput string `json:"raw_output"`
}

// TextItem is a (key, value) pair forwarded to the translation and speech
// services, preserving the caller's correlation key through the round trip.
type TextItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewSessionID returns an 8-character uppercase hex token correlating a
// single upload's artifacts (report, audio, call).
func NewSessionID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
