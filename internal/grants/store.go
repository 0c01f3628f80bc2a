// Package grants records the ephemeral realtime credentials this service
// mints, so operators can see what is outstanding and expired secrets get
// swept out.
package grants

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

var ErrNotFound = errors.New("grant not found")

// Grant is one minted client secret. Secret is never serialized; list and
// fetch responses expose everything else.
type Grant struct {
	ID        string    `json:"grant_id"`
	SessionID string    `json:"session_id"`
	Model     string    `json:"model"`
	Voice     string    `json:"voice"`
	Status    Status    `json:"status"`
	Secret    string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists minted grants.
type Store interface {
	Record(ctx context.Context, g Grant) error
	Get(ctx context.Context, id string) (Grant, error)
	List(ctx context.Context, limit int) ([]Grant, error)
	// Sweep marks grants whose secret has passed its expiry and reports
	// how many were flipped.
	Sweep(ctx context.Context, now time.Time) (int, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

// StartJanitor sweeps the store on a ticker until ctx is done.
func StartJanitor(ctx context.Context, store Store, interval time.Duration, onSweep func(expired int)) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.Sweep(ctx, time.Now().UTC())
				if err != nil {
					log.Printf("grant sweep failed: %v", err)
					continue
				}
				if n > 0 && onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}
