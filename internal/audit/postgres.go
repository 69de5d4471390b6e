package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS parse_audit (
	id            UUID PRIMARY KEY,
	request_id    TEXT,
	route         TEXT NOT NULL,
	input         TEXT NOT NULL,
	resolved_path TEXT,
	status        INTEGER NOT NULL,
	rows          INTEGER NOT NULL DEFAULT 0,
	error_code    TEXT,
	ip_address    TEXT,
	user_agent    TEXT,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
)`

const insertSQL = `
INSERT INTO parse_audit (
	id, request_id, route, input, resolved_path, status, rows,
	error_code, ip_address, user_agent, duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// PostgresStore writes entries to the parse_audit table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL, verifies the connection and
// creates the parse_audit table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create parse_audit table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Insert writes one entry.
func (s *PostgresStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		toPgText(e.RequestID),
		e.Route,
		e.Input,
		toPgText(e.ResolvedPath),
		e.Status,
		e.Rows,
		toPgText(e.ErrorCode),
		toPgText(e.IPAddress),
		toPgText(e.UserAgent),
		e.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert audit entry %s: %w", e.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// toPgText maps "" to SQL NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
