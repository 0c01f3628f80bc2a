package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSession(t *testing.T) {
	var gotPath, gotMethod, gotContentType string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(createdSessionJSON))
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{BaseURL: ts.URL})
	sess, err := c.CreateSession(context.Background(), SessionRequest{
		Model: "gpt-4o-realtime",
		Voice: String("alloy"),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/realtime/sessions" {
		t.Fatalf("request = %s %s, want POST /realtime/sessions", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody["model"] != "gpt-4o-realtime" || gotBody["voice"] != "alloy" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if _, present := gotBody["temperature"]; present {
		t.Fatalf("unset temperature was encoded: %v", gotBody)
	}
	if sess.ID != "sess_1" || sess.ClientSecret.Value != "sk_abc" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestCreateSessionUpstreamStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{BaseURL: ts.URL})
	_, err := c.CreateSession(context.Background(), SessionRequest{Model: "nope"})

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if trErr.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want %d", trErr.StatusCode, http.StatusNotFound)
	}
}

func TestCreateSessionConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := NewClient(ClientConfig{BaseURL: ts.URL})
	_, err := c.CreateSession(context.Background(), SessionRequest{Model: "gpt-4o-realtime"})

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if trErr.Unwrap() == nil {
		t.Fatalf("connection error should carry the underlying cause: %+v", trErr)
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"realtime.session"}`))
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{BaseURL: ts.URL})
	_, err := c.CreateSession(context.Background(), SessionRequest{Model: "gpt-4o-realtime"})

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decErr.Field != "id" {
		t.Fatalf("DecodeError.Field = %q, want id", decErr.Field)
	}
}

func TestAPIKeyTransport(t *testing.T) {
	var gotAuth, gotBeta string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("OpenAI-Beta")
		_, _ = w.Write([]byte(createdSessionJSON))
	}))
	defer ts.Close()

	c := NewClient(ClientConfig{
		BaseURL: ts.URL,
		HTTP:    &http.Client{Transport: &APIKeyTransport{APIKey: "sk_test"}},
	})
	if _, err := c.CreateSession(context.Background(), SessionRequest{Model: "gpt-4o-realtime"}); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if gotAuth != "Bearer sk_test" {
		t.Fatalf("Authorization = %q, want Bearer sk_test", gotAuth)
	}
	if gotBeta != "realtime=v1" {
		t.Fatalf("OpenAI-Beta = %q, want realtime=v1", gotBeta)
	}
}
