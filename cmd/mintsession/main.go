// Command mintsession creates one realtime session and prints the client
// secret, optionally probing the realtime websocket with the fresh secret.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/antoniostano/rtgate/internal/realtime"
)

type options struct {
	baseURL      string
	wsBaseURL    string
	model        string
	voice        string
	instructions string
	maxTokens    string
	temperature  float64
	probe        bool
	timeout      time.Duration
}

func main() {
	opts := parseFlags()

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := realtime.NewClient(realtime.ClientConfig{
		BaseURL: opts.baseURL,
		HTTP: &http.Client{
			Transport: &realtime.APIKeyTransport{APIKey: apiKey},
		},
	})

	req := realtime.SessionRequest{Model: opts.model}
	if opts.voice != "" {
		req.Voice = realtime.String(opts.voice)
	}
	if opts.instructions != "" {
		req.Instructions = realtime.String(opts.instructions)
	}
	if opts.temperature > 0 {
		req.Temperature = realtime.Float(opts.temperature)
	}
	if opts.maxTokens != "" {
		mt, err := parseMaxTokens(opts.maxTokens)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -max-tokens: %v\n", err)
			os.Exit(1)
		}
		req.MaxResponseOutputTokens = &mt
	}

	sess, err := client.CreateSession(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create session: %v\n", err)
		os.Exit(1)
	}

	out := map[string]any{
		"session_id":    sess.ID,
		"model":         sess.Model,
		"voice":         sess.Voice,
		"client_secret": sess.ClientSecret.Value,
		"expires_at":    sess.ClientSecret.ExpiresAt.Format(time.RFC3339),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)

	if !opts.probe {
		return
	}

	stream, events, err := realtime.DialSession(ctx, opts.wsBaseURL, sess.Model, sess.ClientSecret.Value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	select {
	case ev, ok := <-events:
		if !ok {
			fmt.Fprintln(os.Stderr, "probe: connection closed before any event")
			os.Exit(1)
		}
		fmt.Printf("probe: received %s (%s)\n", ev.Type, ev.EventID)
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "probe: timed out waiting for a server event")
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", "https://api.openai.com/v1", "realtime API base URL")
	flag.StringVar(&opts.wsBaseURL, "ws-base-url", "wss://api.openai.com/v1", "realtime websocket base URL")
	flag.StringVar(&opts.model, "model", "gpt-4o-realtime-preview", "session model")
	flag.StringVar(&opts.voice, "voice", "", "session voice (empty leaves the API default)")
	flag.StringVar(&opts.instructions, "instructions", "", "session instructions")
	flag.StringVar(&opts.maxTokens, "max-tokens", "", "max response output tokens, an integer or \"inf\"")
	flag.Float64Var(&opts.temperature, "temperature", 0, "session temperature (0 leaves the API default)")
	flag.BoolVar(&opts.probe, "probe", false, "dial the realtime websocket with the minted secret")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")
	flag.Parse()
	return opts
}

func parseMaxTokens(v string) (realtime.MaxOutputTokens, error) {
	if strings.EqualFold(v, "inf") {
		return realtime.UnlimitedTokens(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return realtime.MaxOutputTokens{}, fmt.Errorf("expected integer or \"inf\", got %q", v)
	}
	if n <= 0 {
		return realtime.MaxOutputTokens{}, fmt.Errorf("token limit must be positive")
	}
	return realtime.MaxTokens(n), nil
}
