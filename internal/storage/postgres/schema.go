package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL UNIQUE,
		display_name         TEXT NOT NULL,
		type                 TEXT NOT NULL,
		balance              BIGINT NOT NULL DEFAULT 0,
		hold                 BIGINT NOT NULL DEFAULT 0,
		total_earned         BIGINT NOT NULL DEFAULT 0,
		total_spent          BIGINT NOT NULL DEFAULT 0,
		transaction_count    BIGINT NOT NULL DEFAULT 0,
		avg_transaction_size BIGINT NOT NULL DEFAULT 0,
		status               TEXT NOT NULL,
		rating               DOUBLE PRECISION NOT NULL DEFAULT 5.0,
		completion_rate      DOUBLE PRECISION NOT NULL DEFAULT 100.0,
		approval_rate        DOUBLE PRECISION NOT NULL DEFAULT 100.0,
		categories           TEXT[],
		hourly_rate          NUMERIC(12,2),
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                 TEXT PRIMARY KEY,
		type               TEXT NOT NULL,
		from_agent_id      TEXT,
		from_agent_name    TEXT NOT NULL,
		to_agent_id        TEXT,
		to_agent_name      TEXT NOT NULL,
		amount             BIGINT NOT NULL,
		purpose            TEXT NOT NULL,
		memo               JSONB,
		status             TEXT NOT NULL,
		consensus_required BOOLEAN NOT NULL DEFAULT FALSE,
		consensus_result   TEXT,
		occurred_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_to_agent
		ON transactions (to_agent_name, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at
		ON transactions (occurred_at DESC)`,
}

// EnsureSchema creates the ledger tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
