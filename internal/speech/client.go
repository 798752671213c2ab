// Package speech provides the text-to-speech and translation vendor client.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spherical-ai/labvoice/internal/domain"
)

// Client handles communication with the Murf speech API.
type Client struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a new speech client.
func NewClient(apiKey, apiBase string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// generateRequest represents the speech synthesis request.
type generateRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// generateResponse represents the speech synthesis response.
type generateResponse struct {
	AudioFile string `json:"audioFile"`
}

// GenerateAudio synthesizes the text with the given voice and returns the
// audio reference. The reference is treated as an opaque string; no codec
// assumption is made.
func (c *Client) GenerateAudio(ctx context.Context, text, voiceID string) (string, error) {
	if c.apiKey == "" {
		return "", domain.ConfigError("MURF_API_KEY is missing", nil)
	}

	body, err := json.Marshal(generateRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return "", domain.APIError("failed to marshal speech request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/speech/generate", bytes.NewReader(body))
	if err != nil {
		return "", domain.APIError("failed to build speech request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.APIError("failed to send speech request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", domain.APIError(fmt.Sprintf("speech API returned status %d: %s", resp.StatusCode, string(bodyBytes)), nil)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", domain.APIError("failed to parse speech response", err)
	}
	if genResp.AudioFile == "" {
		return "", domain.APIError("speech response carried no audio reference", nil)
	}

	return genResp.AudioFile, nil
}

// translateRequest represents the translation request.
type translateRequest struct {
	TargetLanguage string   `json:"targetLanguage"`
	Texts          []string `json:"texts"`
}

// translateResponse represents the translation response.
type translateResponse struct {
	Translations []struct {
		SourceText     string `json:"source_text"`
		TranslatedText string `json:"translated_text"`
	} `json:"translations"`
}

// Translate translates the item values into the target language, preserving
// input order and correlation keys.
func (c *Client) Translate(ctx context.Context, items []domain.TextItem, targetLanguage string) ([]domain.TextItem, error) {
	if c.apiKey == "" {
		return nil, domain.ConfigError("MURF_API_KEY is missing", nil)
	}
	if len(items) == 0 {
		return nil, nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Value
	}

	body, err := json.Marshal(translateRequest{TargetLanguage: targetLanguage, Texts: texts})
	if err != nil {
		return nil, domain.APIError("failed to marshal translation request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/text/translate", bytes.NewReader(body))
	if err != nil {
		return nil, domain.APIError("failed to build translation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.APIError("failed to send translation request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, domain.APIError(fmt.Sprintf("translation API returned status %d: %s", resp.StatusCode, string(bodyBytes)), nil)
	}

	var trResp translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&trResp); err != nil {
		return nil, domain.APIError("failed to parse translation response", err)
	}
	if len(trResp.Translations) != len(items) {
		return nil, domain.APIError(fmt.Sprintf("translation count mismatch: sent %d, got %d", len(items), len(trResp.Translations)), nil)
	}

	translated := make([]domain.TextItem, len(items))
	for i, tr := range trResp.Translations {
		translated[i] = domain.TextItem{Key: items[i].Key, Value: tr.TranslatedText}
	}
	return translated, nil
}
