package grants

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process grant registry for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Grant
	order []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*Grant)}
}

func (s *InMemoryStore) Record(_ context.Context, g Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	s.byID[g.ID] = &g
	s.order = append(s.order, g.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.byID[id]
	if !ok {
		return Grant{}, ErrNotFound
	}
	return *g, nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]Grant, 0, limit)
	// Newest first.
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.byID[s.order[i]])
	}
	return out, nil
}

func (s *InMemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for _, g := range s.byID {
		if g.Status != StatusActive {
			continue
		}
		if g.ExpiresAt.After(now) {
			continue
		}
		g.Status = StatusExpired
		expired++
	}
	return expired, nil
}

func (s *InMemoryStore) Close() error { return nil }
