package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/screener/internal/contracts"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps every report as a JSONB row in screener.snapshots
// ⭐ SSOT: 스냅샷 테이블 접근은 여기서만
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS screener;
	CREATE TABLE IF NOT EXISTS screener.snapshots (
		run_id       UUID PRIMARY KEY,
		screener     TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		outcome      TEXT NOT NULL,
		config_hash  TEXT NOT NULL,
		result_count INT NOT NULL,
		payload      JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS snapshots_screener_generated_idx
		ON screener.snapshots (screener, generated_at DESC);
`

// EnsureSchema creates the schema and table if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Save inserts the report; re-saving a run replaces its payload
func (s *PostgresStore) Save(ctx context.Context, report *contracts.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO screener.snapshots (run_id, screener, generated_at, outcome, config_hash, result_count, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			result_count = EXCLUDED.result_count,
			payload = EXCLUDED.payload
	`

	_, err = s.db.Exec(ctx, query,
		report.RunID,
		string(report.Screener),
		report.GeneratedAt,
		string(report.Outcome),
		report.ConfigHash,
		report.Len(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent report, (nil, nil) if none
func (s *PostgresStore) Latest(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	query := `
		SELECT payload
		FROM screener.snapshots
		WHERE screener = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var payload []byte
	err := s.db.QueryRow(ctx, query, string(id)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var report contracts.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &report, nil
}
