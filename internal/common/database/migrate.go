package database

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL applied at startup. The unique index on
// (founder_id, builder_id, opening_id) is what makes sweep upserts safe to
// re-run on overlapping schedules.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS openings (
		id               UUID PRIMARY KEY,
		founder_id       UUID NOT NULL,
		role_type        TEXT NOT NULL,
		required_skills  JSONB NOT NULL DEFAULT '[]',
		equity_min       DOUBLE PRECISION NOT NULL DEFAULT 0,
		equity_max       DOUBLE PRECISION NOT NULL DEFAULT 0,
		cash_min         DOUBLE PRECISION NOT NULL DEFAULT 0,
		cash_max         DOUBLE PRECISION NOT NULL DEFAULT 0,
		currency         TEXT NOT NULL DEFAULT 'USD',
		hours_per_week   INT NOT NULL,
		remote_preference TEXT NOT NULL,
		stage            TEXT NOT NULL,
		city             TEXT NOT NULL DEFAULT '',
		country          TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS builder_profiles (
		user_id          UUID PRIMARY KEY,
		skills           JSONB NOT NULL DEFAULT '[]',
		risk_appetite    TEXT NOT NULL,
		comp_openness    JSONB NOT NULL DEFAULT '[]',
		hours_per_week   INT NOT NULL,
		roles_interested JSONB NOT NULL DEFAULT '[]',
		remote_preference TEXT NOT NULL,
		city             TEXT NOT NULL DEFAULT '',
		country          TEXT NOT NULL DEFAULT '',
		is_complete      BOOLEAN NOT NULL DEFAULT FALSE,
		is_visible       BOOLEAN NOT NULL DEFAULT TRUE,
		open_to_opportunities BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scenario_responses (
		user_id      UUID PRIMARY KEY,
		answers      JSONB NOT NULL DEFAULT '{}',
		completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id                  UUID PRIMARY KEY,
		founder_id          UUID NOT NULL,
		builder_id          UUID NOT NULL,
		opening_id          UUID NOT NULL,
		compatibility_score INT NOT NULL,
		score_breakdown     JSONB NOT NULL DEFAULT '{}',
		status              TEXT NOT NULL DEFAULT 'PENDING',
		founder_action      TEXT,
		founder_action_at   TIMESTAMPTZ,
		builder_action      TEXT,
		builder_action_at   TIMESTAMPTZ,
		is_mutual           BOOLEAN NOT NULL DEFAULT FALSE,
		matched_at          TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (founder_id, builder_id, opening_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_founder_feed
		ON matches (founder_id, status, compatibility_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_builder_feed
		ON matches (builder_id, status, compatibility_score DESC)`,
	`CREATE TABLE IF NOT EXISTS sweep_runs (
		id                 UUID PRIMARY KEY,
		started_at         TIMESTAMPTZ NOT NULL,
		finished_at        TIMESTAMPTZ NOT NULL,
		openings_processed INT NOT NULL,
		matches_created    INT NOT NULL,
		matches_updated    INT NOT NULL,
		errors             INT NOT NULL,
		duration_ms        BIGINT NOT NULL
	)`,
}

// ApplyMigrations applies the schema statements in order.
func (c *PostgresClient) ApplyMigrations(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
