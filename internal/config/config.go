package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the grant-minting service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIWSBaseURL string

	RealtimeModel       string
	DefaultVoice        string
	DefaultInstructions string
	DefaultModalities   []string

	GrantListLimit int
	SweepInterval  time.Duration

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "rtgate"),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIWSBaseURL:  envOrDefault("OPENAI_WS_BASE_URL", "wss://api.openai.com/v1"),
		RealtimeModel:    envOrDefault("REALTIME_MODEL", "gpt-4o-realtime-preview"),
		DefaultVoice:     envOrDefault("REALTIME_DEFAULT_VOICE", "alloy"),
		// Empty means no instructions key on the wire at all.
		DefaultInstructions: strings.TrimSpace(os.Getenv("REALTIME_DEFAULT_INSTRUCTIONS")),
		DefaultModalities:   splitList(envOrDefault("REALTIME_DEFAULT_MODALITIES", "audio,text")),
		GrantListLimit:      50,
		SweepInterval:       15 * time.Second,
		ShutdownTimeout:     15 * time.Second,
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SweepInterval, err = durationFromEnv("GRANT_SWEEP_INTERVAL", cfg.SweepInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.GrantListLimit, err = intFromEnv("GRANT_LIST_LIMIT", cfg.GrantListLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.SweepInterval < time.Second {
		return Config{}, fmt.Errorf("GRANT_SWEEP_INTERVAL must be at least 1s")
	}
	if cfg.GrantListLimit <= 0 {
		return Config{}, fmt.Errorf("GRANT_LIST_LIMIT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
