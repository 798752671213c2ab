package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/notify"
	"github.com/spherical-ai/labvoice/internal/observability"
	"github.com/spherical-ai/labvoice/internal/telephony"
)

// Translator is the translation vendor boundary.
type Translator interface {
	Translate(ctx context.Context, items []domain.TextItem, targetLanguage string) ([]domain.TextItem, error)
}

// SpeechHandler exposes the speech vendor directly: standalone synthesis
// and translation without going through a document upload.
type SpeechHandler struct {
	logger         *observability.Logger
	speech         notify.Synthesizer
	translator     Translator
	defaultVoiceID string
}

// NewSpeechHandler creates the speech handler.
func NewSpeechHandler(logger *observability.Logger, speech notify.Synthesizer, translator Translator, defaultVoiceID string) *SpeechHandler {
	return &SpeechHandler{
		logger:         logger.WithComponent("speech"),
		speech:         speech,
		translator:     translator,
		defaultVoiceID: defaultVoiceID,
	}
}

// TTSRequestDTO represents the API request for speech synthesis.
type TTSRequestDTO struct {
	Summary      string   `json:"summary"`
	Observations []string `json:"observations"`
	Precautions  string   `json:"precautions"`
	VoiceID      string   `json:"voice_id,omitempty"`
}

// TTS handles POST /tts.
func (h *SpeechHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var reqDTO TTSRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if reqDTO.Summary == "" {
		writeError(w, http.StatusBadRequest, "summary is required", "")
		return
	}

	voiceID := reqDTO.VoiceID
	if voiceID == "" {
		voiceID = h.defaultVoiceID
	}

	narration := notify.Narration(&domain.StructuredReport{
		Summary:              reqDTO.Summary,
		CriticalObservations: reqDTO.Observations,
		Precautions:          reqDTO.Precautions,
	})

	audioID, err := h.speech.GenerateAudio(r.Context(), narration, voiceID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Speech synthesis failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"audio_id": audioID})
}

// TranslateRequestDTO represents the API request for translation.
type TranslateRequestDTO struct {
	Items          []domain.TextItem `json:"items"`
	TargetLanguage string            `json:"target_language"`
}

// TranslateResponseDTO preserves the caller's correlation keys.
type TranslateResponseDTO struct {
	Translations []TranslationDTO `json:"translations"`
}

// TranslationDTO is one translated item.
type TranslationDTO struct {
	Key         string `json:"key"`
	Translation string `json:"translation"`
}

// Translate handles POST /translate.
func (h *SpeechHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var reqDTO TranslateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(reqDTO.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required", "")
		return
	}
	if reqDTO.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "target_language is required", "")
		return
	}

	translated, err := h.translator.Translate(r.Context(), reqDTO.Items, reqDTO.TargetLanguage)
	if err != nil {
		h.logger.Error().Err(err).Msg("Translation failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	resp := TranslateResponseDTO{Translations: make([]TranslationDTO, len(translated))}
	for i, item := range translated {
		resp.Translations[i] = TranslationDTO{Key: item.Key, Translation: item.Value}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CallHandler exposes the telephony vendor directly.
type CallHandler struct {
	logger          *observability.Logger
	phone           notify.Caller
	recipientNumber string
	senderNumber    string
}

// NewCallHandler creates the call handler.
func NewCallHandler(logger *observability.Logger, phone notify.Caller, recipientNumber, senderNumber string) *CallHandler {
	return &CallHandler{
		logger:          logger.WithComponent("call"),
		phone:           phone,
		recipientNumber: recipientNumber,
		senderNumber:    senderNumber,
	}
}

// CallRequestDTO represents the API request for a patient call.
type CallRequestDTO struct {
	Summary string `json:"summary"`
}

// Call handles POST /call.
func (h *CallHandler) Call(w http.ResponseWriter, r *http.Request) {
	var reqDTO CallRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	callID, err := h.phone.Notify(r.Context(), telephony.NotifyRequest{
		RecipientNumber: h.recipientNumber,
		SenderNumber:    h.senderNumber,
		Body:            reqDTO.Summary,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Call failed")
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"call_id": callID})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
