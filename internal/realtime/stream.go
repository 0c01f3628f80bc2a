package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ServerEvent is one envelope-parsed event from the realtime socket. Raw
// holds the full payload for callers that need more than the envelope.
type ServerEvent struct {
	Type    string
	EventID string
	Raw     json.RawMessage
}

type serverEnvelope struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
}

// Stream is an open realtime websocket connection, authenticated with a
// client secret minted by CreateSession.
type Stream struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
	events    chan ServerEvent
}

// DialSession opens the realtime websocket for model using clientSecret.
// wsBaseURL is e.g. "wss://api.openai.com/v1"; plain ws:// works too.
func DialSession(ctx context.Context, wsBaseURL, model, clientSecret string) (*Stream, <-chan ServerEvent, error) {
	u, err := url.Parse(strings.TrimRight(wsBaseURL, "/") + "/realtime")
	if err != nil {
		return nil, nil, err
	}
	q := u.Query()
	q.Set("model", model)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+clientSecret)
	headers.Set("OpenAI-Beta", "realtime=v1")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, nil, fmt.Errorf("dial realtime websocket: %w", err)
	}

	events := make(chan ServerEvent, 256)
	s := &Stream{conn: conn, done: make(chan struct{}), events: events}
	go s.readLoop()
	return s, events, nil
}

// UpdateSession sends a session.update event. The session payload follows
// the same presence rules as session creation: unset fields are omitted.
func (s *Stream) UpdateSession(_ context.Context, cfg SessionRequest) error {
	return s.writeJSON(map[string]any{
		"type":    "session.update",
		"session": cfg,
	})
}

// Send transmits an arbitrary client event payload.
func (s *Stream) Send(_ context.Context, payload map[string]any) error {
	return s.writeJSON(payload)
}

func (s *Stream) writeJSON(payload map[string]any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(payload)
}

// readLoop is the sole sender on events and the only place it is closed,
// so a concurrent Close can never race a send on a closed channel.
func (s *Stream) readLoop() {
	defer close(s.events)
	defer func() { _ = s.conn.Close() }()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env serverEnvelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			continue
		}
		select {
		case s.events <- ServerEvent{Type: env.Type, EventID: env.EventID, Raw: json.RawMessage(data)}:
		case <-s.done:
			return
		}
	}
}

// Close is idempotent. It unblocks readLoop, which then closes the
// events channel on its way out.
func (s *Stream) Close() error {
	var retErr error
	s.closeOnce.Do(func() {
		close(s.done)
		retErr = s.conn.Close()
	})
	return retErr
}
