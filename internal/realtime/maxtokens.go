package realtime

import (
	"encoding/json"
	"fmt"
)

// MaxOutputTokens is either a finite token limit or unbounded. On the wire
// a finite limit is a JSON integer and unbounded is the string "inf".
type MaxOutputTokens struct {
	Infinite bool
	Value    int
}

// MaxTokens returns a finite token limit.
func MaxTokens(n int) MaxOutputTokens {
	return MaxOutputTokens{Value: n}
}

// UnlimitedTokens returns the unbounded variant.
func UnlimitedTokens() MaxOutputTokens {
	return MaxOutputTokens{Infinite: true}
}

func (m MaxOutputTokens) MarshalJSON() ([]byte, error) {
	if m.Infinite {
		return json.Marshal("inf")
	}
	return json.Marshal(m.Value)
}

func (m *MaxOutputTokens) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MaxOutputTokens{Value: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Field: "max_response_output_tokens", Want: "integer or string", Got: string(data)}
	}
	// The API sends "inf". Any other string is treated the same rather
	// than parsed numerically, matching upstream behavior.
	*m = MaxOutputTokens{Infinite: true}
	return nil
}

func (m MaxOutputTokens) String() string {
	if m.Infinite {
		return "inf"
	}
	return fmt.Sprintf("%d", m.Value)
}
