package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spherical-ai/labvoice/internal/domain"
)

type recordedRequest struct {
	path string
	form map[string]string
}

func newVendorFake(t *testing.T, failCalls, failSMS bool) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "tok" {
			t.Errorf("Unexpected basic auth %q:%q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		requests = append(requests, recordedRequest{path: r.URL.Path, form: form})

		if strings.HasSuffix(r.URL.Path, "/Calls.json") {
			if failCalls {
				http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"sid":"CA0011"}`))
			return
		}
		if failSMS {
			http.Error(w, `{"message":"sms queue unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM0022"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestNotify_CallThenSMS(t *testing.T) {
	srv, requests := newVendorFake(t, false, false)
	client := NewClient("AC123", "tok", srv.URL, time.Second)

	callID, err := client.Notify(context.Background(), NotifyRequest{
		RecipientNumber: "+15550001111",
		SenderNumber:    "+15550002222",
		Body:            "Your results are ready",
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if callID != "CA0011" {
		t.Errorf("Expected call sid, got %q", callID)
	}

	reqs := *requests
	if len(reqs) != 2 {
		t.Fatalf("Expected call then SMS, got %d requests", len(reqs))
	}
	if !strings.HasSuffix(reqs[0].path, "/Accounts/AC123/Calls.json") {
		t.Errorf("Expected first request to place the call, got %s", reqs[0].path)
	}
	if got := reqs[0].form["Twiml"]; got != "<Response><Say>Your results are ready</Say></Response>" {
		t.Errorf("Unexpected TwiML %q", got)
	}
	if !strings.HasSuffix(reqs[1].path, "/Accounts/AC123/Messages.json") {
		t.Errorf("Expected second request to send the SMS, got %s", reqs[1].path)
	}
	if reqs[1].form["Body"] != "Your results are ready" {
		t.Errorf("Expected SMS to carry the same text, got %q", reqs[1].form["Body"])
	}
	if reqs[0].form["To"] != "+15550001111" || reqs[0].form["From"] != "+15550002222" {
		t.Errorf("Unexpected call numbers %+v", reqs[0].form)
	}
}

func TestNotify_PlaysAudioWhenAvailable(t *testing.T) {
	srv, requests := newVendorFake(t, false, false)
	client := NewClient("AC123", "tok", srv.URL, time.Second)

	_, err := client.Notify(context.Background(), NotifyRequest{
		RecipientNumber: "+15550001111",
		SenderNumber:    "+15550002222",
		Body:            "Your results are ready",
		AudioURL:        "https://cdn.example/audio/abc.mp3",
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	reqs := *requests
	if got := reqs[0].form["Twiml"]; got != "<Response><Play>https://cdn.example/audio/abc.mp3</Play></Response>" {
		t.Errorf("Expected call to play the audio URL, got %q", got)
	}
}

func TestNotify_EscapesBody(t *testing.T) {
	srv, requests := newVendorFake(t, false, false)
	client := NewClient("AC123", "tok", srv.URL, time.Second)

	_, err := client.Notify(context.Background(), NotifyRequest{
		RecipientNumber: "+15550001111",
		SenderNumber:    "+15550002222",
		Body:            "Sodium < 135 & falling",
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	reqs := *requests
	twiml := reqs[0].form["Twiml"]
	if strings.Contains(twiml, "< 135 &") {
		t.Errorf("Expected body to be XML-escaped, got %q", twiml)
	}
	if !strings.Contains(twiml, "&lt; 135 &amp;") {
		t.Errorf("Expected escaped entities in TwiML, got %q", twiml)
	}
}

func TestNotify_EmptyBody(t *testing.T) {
	client := NewClient("AC123", "tok", "http://unused", time.Second)

	_, err := client.Notify(context.Background(), NotifyRequest{Body: ""})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if !domain.IsType(err, domain.ErrTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNotify_MissingCredentials(t *testing.T) {
	client := NewClient("", "", "http://unused", time.Second)

	_, err := client.Notify(context.Background(), NotifyRequest{Body: "x"})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if !domain.IsType(err, domain.ErrTypeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestNotify_SMSFailureKeepsCallSID(t *testing.T) {
	srv, requests := newVendorFake(t, false, true)
	client := NewClient("AC123", "tok", srv.URL, time.Second)

	callID, err := client.Notify(context.Background(), NotifyRequest{
		RecipientNumber: "+15550001111",
		SenderNumber:    "+15550002222",
		Body:            "text",
	})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if !domain.IsType(err, domain.ErrTypeAPI) {
		t.Errorf("Expected API error, got %v", err)
	}
	if callID != "CA0011" {
		t.Errorf("Expected the placed call's sid alongside the SMS error, got %q", callID)
	}
	if len(*requests) != 2 {
		t.Errorf("Expected both the call and the SMS attempt, got %d requests", len(*requests))
	}
}

func TestNotify_CallFailure(t *testing.T) {
	srv, requests := newVendorFake(t, true, false)
	client := NewClient("AC123", "tok", srv.URL, time.Second)

	_, err := client.Notify(context.Background(), NotifyRequest{
		RecipientNumber: "+15550001111",
		SenderNumber:    "+15550002222",
		Body:            "text",
	})
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if !domain.IsType(err, domain.ErrTypeAPI) {
		t.Errorf("Expected API error, got %v", err)
	}
	if len(*requests) != 1 {
		t.Errorf("Expected no SMS after a failed call, got %d requests", len(*requests))
	}
}
