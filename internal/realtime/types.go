// Package realtime is a typed client binding for the OpenAI Realtime
// sessions API. It covers one round trip: encode a session request,
// POST it, decode the created session including its client secret.
package realtime

import (
	"encoding/json"
	"time"
)

// SessionRequest configures the session to be created. Model is the only
// required field; every other field is emitted on the wire only when set.
type SessionRequest struct {
	Model                   string
	Modalities              []string
	Instructions            *string
	Voice                   *string
	InputAudioFormat        *string
	OutputAudioFormat       *string
	InputAudioTranscription *InputAudioTranscription
	TurnDetection           *TurnDetection
	Tools                   []Tool
	ToolChoice              *string
	Temperature             *float64
	MaxResponseOutputTokens *MaxOutputTokens
}

// InputAudioTranscription selects the transcription model for input audio.
type InputAudioTranscription struct {
	Model string `json:"model"`
}

// TurnDetection holds the server-side VAD configuration. Type is always
// emitted when the object itself is present; the rest only when set.
type TurnDetection struct {
	Type              string   `json:"type"`
	Threshold         *float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   *int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs *int     `json:"silence_duration_ms,omitempty"`
	CreateResponse    *bool    `json:"create_response,omitempty"`
}

// Tool describes a function the model may call. All fields are optional;
// Parameters is an opaque JSON schema passed through verbatim.
type Tool struct {
	Type        *string         `json:"type,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Session is a created session as returned by the API.
type Session struct {
	ID                      string
	Object                  string
	Model                   string
	Modalities              []string
	Instructions            string
	Voice                   string
	InputAudioFormat        string
	OutputAudioFormat       string
	InputAudioTranscription *InputAudioTranscription
	TurnDetection           *TurnDetection
	Tools                   []Tool
	ToolChoice              string
	Temperature             float64
	MaxResponseOutputTokens MaxOutputTokens
	ClientSecret            ClientSecret
}

// ClientSecret is the short-lived credential used to open the realtime
// websocket connection. ExpiresAt travels as Unix milliseconds.
type ClientSecret struct {
	Value     string
	ExpiresAt time.Time
}

// String returns a pointer to s for optional request fields.
func String(s string) *string { return &s }

// Float returns a pointer to f for optional request fields.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n for optional request fields.
func Int(n int) *int { return &n }

// Bool returns a pointer to b for optional request fields.
func Bool(b bool) *bool { return &b }
