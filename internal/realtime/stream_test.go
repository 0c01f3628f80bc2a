package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDialSessionEventsAndUpdate(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("model") != "gpt-4o-realtime" {
			t.Errorf("model query = %q, want gpt-4o-realtime", r.URL.Query().Get("model"))
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteJSON(map[string]any{"type": "session.created", "event_id": "ev_1"}); err != nil {
			return
		}

		var update struct {
			Type    string         `json:"type"`
			Session map[string]any `json:"session"`
		}
		if err := conn.ReadJSON(&update); err != nil {
			return
		}
		if update.Type != "session.update" {
			t.Errorf("client event type = %q, want session.update", update.Type)
		}
		if update.Session["voice"] != "verse" {
			t.Errorf("session.update voice = %v, want verse", update.Session["voice"])
		}
		if _, present := update.Session["temperature"]; present {
			t.Errorf("unset temperature encoded in session.update: %v", update.Session)
		}
		_ = conn.WriteJSON(map[string]any{"type": "session.updated", "event_id": "ev_2"})
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws://" + strings.TrimPrefix(ts.URL, "http://")
	stream, events, err := DialSession(ctx, wsURL, "gpt-4o-realtime", "sk_abc")
	if err != nil {
		t.Fatalf("DialSession() error = %v", err)
	}
	defer stream.Close()

	if gotAuth != "Bearer sk_abc" {
		t.Fatalf("Authorization = %q, want Bearer sk_abc", gotAuth)
	}

	ev := <-events
	if ev.Type != "session.created" || ev.EventID != "ev_1" {
		t.Fatalf("first event = %+v, want session.created/ev_1", ev)
	}
	var full map[string]any
	if err := json.Unmarshal(ev.Raw, &full); err != nil {
		t.Fatalf("event Raw is not JSON: %v", err)
	}

	if err := stream.UpdateSession(ctx, SessionRequest{Model: "gpt-4o-realtime", Voice: String("verse")}); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}

	ev = <-events
	if ev.Type != "session.updated" {
		t.Fatalf("second event = %+v, want session.updated", ev)
	}
}

func TestStreamCloseWithBackloggedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	flooded := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Write far more events than the client buffers so its read
		// loop ends up blocked mid-send.
		for i := 0; i < 400; i++ {
			if err := conn.WriteJSON(map[string]any{"type": "response.audio.delta"}); err != nil {
				return
			}
		}
		close(flooded)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	wsURL := "ws://" + strings.TrimPrefix(ts.URL, "http://")
	stream, events, err := DialSession(context.Background(), wsURL, "gpt-4o-realtime", "sk_abc")
	if err != nil {
		t.Fatalf("DialSession() error = %v", err)
	}

	select {
	case <-flooded:
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not finish flooding events")
	}
	// Closing while the read loop is parked on a full buffer must not
	// panic; the events channel still drains and closes cleanly.
	if err := stream.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatalf("events channel did not close after Close()")
		}
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	wsURL := "ws://" + strings.TrimPrefix(ts.URL, "http://")
	stream, events, err := DialSession(context.Background(), wsURL, "gpt-4o-realtime", "sk_abc")
	if err != nil {
		t.Fatalf("DialSession() error = %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, open := <-events; open {
		t.Fatalf("events channel should be closed after Close()")
	}
}
