package realtime

import "fmt"

// TransportError reports a failure before a well-formed API response was
// obtained: connection errors from the HTTP client or a non-2xx status.
// The underlying error, when any, is reachable through Unwrap.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that parsed as JSON but did not
// match the session shape: a required field missing or the wrong type.
type DecodeError struct {
	Field string
	Want  string
	Got   string
}

func (e *DecodeError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("decode session: field %q missing (want %s)", e.Field, e.Want)
	}
	return fmt.Sprintf("decode session: field %q: want %s, got %s", e.Field, e.Want, e.Got)
}
