package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const sessionsPath = "/realtime/sessions"

// Doer executes a single HTTP request. *http.Client satisfies it; it is
// where retries, pooling, and socket timeouts live, not in this package.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues session-creation calls against a Realtime API base URL.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   Doer
}

// ClientConfig configures a Client. HTTP defaults to http.DefaultClient;
// wrap the transport (see APIKeyTransport) to inject authentication.
type ClientConfig struct {
	BaseURL string
	HTTP    Doer
}

func NewClient(cfg ClientConfig) *Client {
	httpc := cfg.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpc:   httpc,
	}
}

// NewSessionRequest builds the HTTP request for creating a session: POST
// to <base>/realtime/sessions with the encoded config as JSON body. No
// auth headers are set here; that is the transport's job.
func (c *Client) NewSessionRequest(ctx context.Context, cfg SessionRequest) (*http.Request, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateSession performs the full round trip: encode, POST, decode.
// Failures are either a *TransportError (connection error or non-2xx
// status) or a *DecodeError (body did not match the session shape).
func (c *Client) CreateSession(ctx context.Context, cfg SessionRequest) (*Session, error) {
	req, err := c.NewSessionRequest(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "create session", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, &TransportError{
			Op:         "create session",
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Op: "read session response", Err: err}
	}
	return DecodeSession(body)
}

// APIKeyTransport is an http.RoundTripper that injects the bearer token
// and the realtime beta header on every request. It is the transport-side
// counterpart of Client, which deliberately knows nothing about auth.
type APIKeyTransport struct {
	APIKey string
	Base   http.RoundTripper
}

func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.APIKey)
	clone.Header.Set("OpenAI-Beta", "realtime=v1")
	return base.RoundTrip(clone)
}
