// Package telephony provides the voice call and SMS vendor client.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spherical-ai/labvoice/internal/domain"
)

// Client handles communication with the Twilio REST API.
type Client struct {
	accountSID string
	authToken  string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a new telephony client.
func NewClient(accountSID, authToken, apiBase string, timeout time.Duration) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NotifyRequest describes one notification: a voice call plus a companion
// SMS carrying the same text. When AudioURL is set the call plays it instead
// of speaking the body.
type NotifyRequest struct {
	RecipientNumber string
	SenderNumber    string
	Body            string
	AudioURL        string
}

// callResponse is the subset of the vendor response the pipeline uses.
type callResponse struct {
	SID string `json:"sid"`
}

// Notify places the voice call and sends the companion SMS, returning the
// call identifier. A failed SMS does not invalidate a placed call: the sid
// is returned alongside the SMS error so the caller can record both.
func (c *Client) Notify(ctx context.Context, req NotifyRequest) (string, error) {
	if c.accountSID == "" || c.authToken == "" {
		return "", domain.ConfigError("TWILIO_ACCOUNT_SID or TWILIO_AUTH_TOKEN is missing", nil)
	}
	if req.Body == "" {
		return "", domain.ValidationError("text body is required", nil)
	}

	callSID, err := c.placeCall(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.sendSMS(ctx, req); err != nil {
		return callSID, err
	}

	return callSID, nil
}

// placeCall creates the voice call with inline TwiML.
func (c *Client) placeCall(ctx context.Context, req NotifyRequest) (string, error) {
	form := url.Values{}
	form.Set("To", req.RecipientNumber)
	form.Set("From", req.SenderNumber)
	form.Set("Twiml", buildTwiML(req.Body, req.AudioURL))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", c.apiBase, c.accountSID)
	respBody, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		return "", err
	}

	var call callResponse
	if err := json.Unmarshal(respBody, &call); err != nil {
		return "", domain.APIError("failed to parse call response", err)
	}
	if call.SID == "" {
		return "", domain.APIError("call response carried no sid", nil)
	}
	return call.SID, nil
}

// sendSMS sends the companion text message.
func (c *Client) sendSMS(ctx context.Context, req NotifyRequest) error {
	form := url.Values{}
	form.Set("To", req.RecipientNumber)
	form.Set("From", req.SenderNumber)
	form.Set("Body", req.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.apiBase, c.accountSID)
	_, err := c.postForm(ctx, endpoint, form)
	return err
}

// postForm sends an authenticated form-encoded request.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.APIError("failed to build telephony request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.APIError("failed to send telephony request", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.APIError(fmt.Sprintf("telephony API returned status %d: %s", resp.StatusCode, string(body)), nil)
	}
	return body, nil
}

// buildTwiML renders the call instructions: play the pre-generated audio
// when available, otherwise speak the body.
func buildTwiML(body, audioURL string) string {
	if audioURL != "" {
		return fmt.Sprintf("<Response><Play>%s</Play></Response>", escapeXML(audioURL))
	}
	return fmt.Sprintf("<Response><Say>%s</Say></Response>", escapeXML(body))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
