package callstats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the SQL DDL for the call_media_stats table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS call_media_stats (
    stream_sid      TEXT PRIMARY KEY,
    call_sid        TEXT NOT NULL DEFAULT '',
    started_at      TIMESTAMPTZ NOT NULL,
    ended_at        TIMESTAMPTZ NOT NULL,
    frames_received BIGINT NOT NULL DEFAULT 0,
    frames_dropped  BIGINT NOT NULL DEFAULT 0,
    frames_silent   BIGINT NOT NULL DEFAULT 0,
    bytes_forwarded BIGINT NOT NULL DEFAULT 0,
    recorded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_call_media_stats_call ON call_media_stats(call_sid);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db   DB
	pool *pgxpool.Pool
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] over an existing connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] to
// ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a connection pool for dsn, verifies connectivity, and runs
// the schema migration. The returned store owns the pool; Close releases it.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("callstats: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("callstats: ping: %w", err)
	}
	s := &PostgresStore{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate executes the [Schema] DDL against the database, creating the
// call_media_stats table and index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("callstats: migrate: %w", err)
	}
	return nil
}

// Record upserts the stats row for a finished stream, keyed by StreamSID.
func (s *PostgresStore) Record(ctx context.Context, stats *CallStats) error {
	const query = `
		INSERT INTO call_media_stats (
			stream_sid, call_sid, started_at, ended_at,
			frames_received, frames_dropped, frames_silent, bytes_forwarded
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (stream_sid) DO UPDATE SET
			call_sid = EXCLUDED.call_sid,
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at,
			frames_received = EXCLUDED.frames_received,
			frames_dropped = EXCLUDED.frames_dropped,
			frames_silent = EXCLUDED.frames_silent,
			bytes_forwarded = EXCLUDED.bytes_forwarded,
			recorded_at = now()`

	_, err := s.db.Exec(ctx, query,
		stats.StreamSID, stats.CallSID, stats.StartedAt, stats.EndedAt,
		stats.FramesReceived, stats.FramesDropped, stats.FramesSilent, stats.BytesForwarded,
	)
	if err != nil {
		return fmt.Errorf("callstats: record %q: %w", stats.StreamSID, err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	_, err := s.db.Exec(ctx, `SELECT 1`)
	return err
}

// Close releases the connection pool if this store owns one.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
