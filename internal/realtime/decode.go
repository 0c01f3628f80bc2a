package realtime

import (
	"encoding/json"
	"errors"
	"time"
)

type sessionWire struct {
	ID                      *string                  `json:"id"`
	Object                  *string                  `json:"object"`
	Model                   *string                  `json:"model"`
	Modalities              *[]string                `json:"modalities"`
	Instructions            *string                  `json:"instructions"`
	Voice                   *string                  `json:"voice"`
	InputAudioFormat        *string                  `json:"input_audio_format"`
	OutputAudioFormat       *string                  `json:"output_audio_format"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription"`
	TurnDetection           *TurnDetection           `json:"turn_detection"`
	Tools                   *[]Tool                  `json:"tools"`
	ToolChoice              *string                  `json:"tool_choice"`
	Temperature             *float64                 `json:"temperature"`
	MaxResponseOutputTokens *MaxOutputTokens         `json:"max_response_output_tokens"`
	ClientSecret            *clientSecretWire        `json:"client_secret"`
}

type clientSecretWire struct {
	Value     *string `json:"value"`
	ExpiresAt *int64  `json:"expires_at"`
}

// DecodeSession strictly decodes a created-session payload. Every field
// the API documents as always present must be there with the right type;
// otherwise the result is a *DecodeError naming the offending field.
// The two optional sub-objects (input_audio_transcription and
// turn_detection) decode to nil when missing or null.
func DecodeSession(data []byte) (*Session, error) {
	var w sessionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, asDecodeError(err)
	}

	required := []struct {
		field string
		want  string
		ok    bool
	}{
		{"id", "string", w.ID != nil},
		{"object", "string", w.Object != nil},
		{"model", "string", w.Model != nil},
		{"modalities", "list of strings", w.Modalities != nil},
		{"instructions", "string", w.Instructions != nil},
		{"voice", "string", w.Voice != nil},
		{"input_audio_format", "string", w.InputAudioFormat != nil},
		{"output_audio_format", "string", w.OutputAudioFormat != nil},
		{"tools", "list of tools", w.Tools != nil},
		{"tool_choice", "string", w.ToolChoice != nil},
		{"temperature", "number", w.Temperature != nil},
		{"max_response_output_tokens", "integer or string", w.MaxResponseOutputTokens != nil},
		{"client_secret", "object", w.ClientSecret != nil},
	}
	for _, f := range required {
		if !f.ok {
			return nil, &DecodeError{Field: f.field, Want: f.want}
		}
	}
	if w.ClientSecret.Value == nil {
		return nil, &DecodeError{Field: "client_secret.value", Want: "string"}
	}
	if w.ClientSecret.ExpiresAt == nil {
		return nil, &DecodeError{Field: "client_secret.expires_at", Want: "integer unix milliseconds"}
	}

	return &Session{
		ID:                      *w.ID,
		Object:                  *w.Object,
		Model:                   *w.Model,
		Modalities:              *w.Modalities,
		Instructions:            *w.Instructions,
		Voice:                   *w.Voice,
		InputAudioFormat:        *w.InputAudioFormat,
		OutputAudioFormat:       *w.OutputAudioFormat,
		InputAudioTranscription: w.InputAudioTranscription,
		TurnDetection:           w.TurnDetection,
		Tools:                   *w.Tools,
		ToolChoice:              *w.ToolChoice,
		Temperature:             *w.Temperature,
		MaxResponseOutputTokens: *w.MaxResponseOutputTokens,
		ClientSecret: ClientSecret{
			Value:     *w.ClientSecret.Value,
			ExpiresAt: time.UnixMilli(*w.ClientSecret.ExpiresAt).UTC(),
		},
	}, nil
}

func asDecodeError(err error) error {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		return &DecodeError{Field: field, Want: typeErr.Type.String(), Got: typeErr.Value}
	}
	return &DecodeError{Field: "(root)", Want: "session object", Got: err.Error()}
}
