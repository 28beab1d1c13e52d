package journal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHibernator keeps records in the bedrock_sessions table
type PostgresHibernator struct {
	pool *pgxpool.Pool
}

const (
	sqlCreateSessions = `
		CREATE TABLE IF NOT EXISTS bedrock_sessions (
			session_id TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			closed_at  TIMESTAMPTZ NOT NULL
		)`

	sqlGetSession = `
		SELECT record FROM bedrock_sessions WHERE session_id = $1`

	sqlPutSession = `
		INSERT INTO bedrock_sessions (session_id, record, closed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET record = EXCLUDED.record, closed_at = EXCLUDED.closed_at`

	sqlDeleteSession = `
		DELETE FROM bedrock_sessions WHERE session_id = $1`
)

// NewPostgresHibernator connects a pool to the database at dsn
func NewPostgresHibernator(
	ctx context.Context, dsn string,
) (*PostgresHibernator, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresHibernator{pool: pool}, nil
}

// EnsureSchema creates the sessions table if it is missing
func (h *PostgresHibernator) EnsureSchema(ctx context.Context) error {
	_, err := h.pool.Exec(ctx, sqlCreateSessions)
	return err
}

func (h *PostgresHibernator) Get(
	ctx context.Context, sessionID string,
) (*HibernateRecord, error) {
	var data []byte
	err := h.pool.QueryRow(ctx, sqlGetSession, sessionID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHibernateNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := &HibernateRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (h *PostgresHibernator) Put(
	ctx context.Context, rec *HibernateRecord,
) error {
	if rec.SessionID == "" {
		return ErrSessionIDRequired
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = h.pool.Exec(ctx, sqlPutSession,
		rec.SessionID, data, rec.ClosedAt,
	)
	return err
}

func (h *PostgresHibernator) Delete(
	ctx context.Context, sessionID string,
) error {
	_, err := h.pool.Exec(ctx, sqlDeleteSession, sessionID)
	return err
}

func (h *PostgresHibernator) Close() error {
	h.pool.Close()
	return nil
}
