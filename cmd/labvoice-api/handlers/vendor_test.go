package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/labvoice/internal/domain"
	"github.com/spherical-ai/labvoice/internal/observability"
	"github.com/spherical-ai/labvoice/internal/telephony"
)

type fakeSynth struct {
	audioURL string
	err      error
	gotText  string
	gotVoice string
}

func (f *fakeSynth) GenerateAudio(ctx context.Context, text, voiceID string) (string, error) {
	f.gotText = text
	f.gotVoice = voiceID
	if f.err != nil {
		return "", f.err
	}
	return f.audioURL, nil
}

type fakeTranslator struct {
	items   []domain.TextItem
	err     error
	gotLang string
}

func (f *fakeTranslator) Translate(ctx context.Context, items []domain.TextItem, targetLanguage string) ([]domain.TextItem, error) {
	f.gotLang = targetLanguage
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakePhone struct {
	callID string
	err    error
	gotReq telephony.NotifyRequest
}

func (f *fakePhone) Notify(ctx context.Context, req telephony.NotifyRequest) (string, error) {
	f.gotReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.callID, nil
}

func postJSON(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestTTS_Success(t *testing.T) {
	synth := &fakeSynth{audioURL: "https://cdn.example/a.mp3"}
	h := NewSpeechHandler(observability.Nop(), synth, &fakeTranslator{}, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.TTS(rec, postJSON(t, "/tts", `{"summary":"All good.","observations":["BP slightly high"],"precautions":"Rest well."}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example/a.mp3", resp["audio_id"])

	// Default voice applies when the request names none
	assert.Equal(t, "en-US-natalie", synth.gotVoice)
	assert.Contains(t, synth.gotText, "All good.")
	assert.Contains(t, synth.gotText, "Critical Observations:\nBP slightly high")
	assert.Contains(t, synth.gotText, "Precautions:\nRest well.")
}

func TestTTS_VoiceOverride(t *testing.T) {
	synth := &fakeSynth{audioURL: "url"}
	h := NewSpeechHandler(observability.Nop(), synth, &fakeTranslator{}, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.TTS(rec, postJSON(t, "/tts", `{"summary":"All good.","voice_id":"en-UK-ruby"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en-UK-ruby", synth.gotVoice)
}

func TestTTS_MissingSummary(t *testing.T) {
	h := NewSpeechHandler(observability.Nop(), &fakeSynth{}, &fakeTranslator{}, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.TTS(rec, postJSON(t, "/tts", `{"precautions":"Rest."}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTTS_VendorFailure(t *testing.T) {
	synth := &fakeSynth{err: domain.ConfigError("MURF_API_KEY is missing", nil)}
	h := NewSpeechHandler(observability.Nop(), synth, &fakeTranslator{}, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.TTS(rec, postJSON(t, "/tts", `{"summary":"All good."}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "MURF_API_KEY")
}

func TestTranslate_PreservesKeys(t *testing.T) {
	translator := &fakeTranslator{items: []domain.TextItem{
		{Key: "summary", Value: "Hola"},
		{Key: "precautions", Value: "Descansa"},
	}}
	h := NewSpeechHandler(observability.Nop(), &fakeSynth{}, translator, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.Translate(rec, postJSON(t, "/translate",
		`{"items":[{"key":"summary","value":"Hello"},{"key":"precautions","value":"Rest"}],"target_language":"es-ES"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "es-ES", translator.gotLang)

	var resp TranslateResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Translations, 2)
	assert.Equal(t, "summary", resp.Translations[0].Key)
	assert.Equal(t, "Hola", resp.Translations[0].Translation)
	assert.Equal(t, "precautions", resp.Translations[1].Key)
	assert.Equal(t, "Descansa", resp.Translations[1].Translation)
}

func TestTranslate_MissingFields(t *testing.T) {
	h := NewSpeechHandler(observability.Nop(), &fakeSynth{}, &fakeTranslator{}, "en-US-natalie")

	rec := httptest.NewRecorder()
	h.Translate(rec, postJSON(t, "/translate", `{"items":[],"target_language":"es-ES"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Translate(rec, postJSON(t, "/translate", `{"items":[{"key":"k","value":"v"}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCall_Success(t *testing.T) {
	phone := &fakePhone{callID: "CA123"}
	h := NewCallHandler(observability.Nop(), phone, "+15550001111", "+15550002222")

	rec := httptest.NewRecorder()
	h.Call(rec, postJSON(t, "/call", `{"summary":"Your results look fine."}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CA123", resp["call_id"])
	assert.Equal(t, "Your results look fine.", phone.gotReq.Body)
	assert.Equal(t, "+15550001111", phone.gotReq.RecipientNumber)
	assert.Equal(t, "+15550002222", phone.gotReq.SenderNumber)
}

func TestCall_VendorFailure(t *testing.T) {
	phone := &fakePhone{err: errors.New("call placement failed")}
	h := NewCallHandler(observability.Nop(), phone, "+15550001111", "+15550002222")

	rec := httptest.NewRecorder()
	h.Call(rec, postJSON(t, "/call", `{"summary":"Hello"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCall_BadBody(t *testing.T) {
	h := NewCallHandler(observability.Nop(), &fakePhone{}, "+15550001111", "+15550002222")

	rec := httptest.NewRecorder()
	h.Call(rec, postJSON(t, "/call", `{broken`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
