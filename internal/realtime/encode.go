package realtime

import "encoding/json"

// MarshalJSON emits the wire form of a session request. Only fields that
// are actually set produce a key; unset optionals are dropped entirely
// rather than emitted as null. An empty-but-non-nil list is still a set
// field and encodes as [].
//
// No value validation happens here. The API is the source of truth for
// semantic checks; this layer only guarantees structural fidelity.
func (r SessionRequest) MarshalJSON() ([]byte, error) {
	obj := map[string]any{
		"model": r.Model,
	}
	if r.Modalities != nil {
		obj["modalities"] = r.Modalities
	}
	if r.Instructions != nil {
		obj["instructions"] = *r.Instructions
	}
	if r.Voice != nil {
		obj["voice"] = *r.Voice
	}
	if r.InputAudioFormat != nil {
		obj["input_audio_format"] = *r.InputAudioFormat
	}
	if r.OutputAudioFormat != nil {
		obj["output_audio_format"] = *r.OutputAudioFormat
	}
	if r.InputAudioTranscription != nil {
		obj["input_audio_transcription"] = r.InputAudioTranscription
	}
	if r.TurnDetection != nil {
		obj["turn_detection"] = r.TurnDetection
	}
	if r.Tools != nil {
		obj["tools"] = r.Tools
	}
	if r.ToolChoice != nil {
		obj["tool_choice"] = *r.ToolChoice
	}
	if r.Temperature != nil {
		obj["temperature"] = *r.Temperature
	}
	if r.MaxResponseOutputTokens != nil {
		obj["max_response_output_tokens"] = *r.MaxResponseOutputTokens
	}
	return json.Marshal(obj)
}
