package grants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists grants in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS realtime_grants (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			model TEXT NOT NULL,
			voice TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_realtime_grants_created ON realtime_grants (created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_realtime_grants_status_expires ON realtime_grants (status, expires_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Record stores the grant metadata. The secret itself is deliberately not
// written to the database.
func (s *PostgresStore) Record(ctx context.Context, g Grant) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Status == "" {
		g.Status = StatusActive
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO realtime_grants (id, session_id, model, voice, status, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID,
		g.SessionID,
		g.Model,
		g.Voice,
		string(g.Status),
		g.ExpiresAt,
		g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Grant, error) {
	var g Grant
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, session_id, model, voice, status, expires_at, created_at
		 FROM realtime_grants WHERE id=$1`,
		id,
	).Scan(&g.ID, &g.SessionID, &g.Model, &g.Voice, &status, &g.ExpiresAt, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Grant{}, ErrNotFound
	}
	if err != nil {
		return Grant{}, fmt.Errorf("get grant: %w", err)
	}
	g.Status = Status(status)
	return g, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Grant, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, model, voice, status, expires_at, created_at
		 FROM realtime_grants ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	out := make([]Grant, 0, limit)
	for rows.Next() {
		var g Grant
		var status string
		if err := rows.Scan(&g.ID, &g.SessionID, &g.Model, &g.Voice, &status, &g.ExpiresAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant row: %w", err)
		}
		g.Status = Status(status)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grant rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE realtime_grants SET status=$1 WHERE status=$2 AND expires_at <= $3`,
		string(StatusExpired),
		string(StatusActive),
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep grants: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
