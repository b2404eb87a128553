package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion is the schema version Migrate brings the database to.
const SchemaVersion = 1

var schemaV1 = []struct {
	name string
	sql  string
}{
	{"create clinical_entries", `
		CREATE TABLE IF NOT EXISTS clinical_entries (
			id            UUID PRIMARY KEY,
			user_id       UUID NOT NULL,
			shift_date    DATE NOT NULL,
			items         JSONB NOT NULL DEFAULT '{}'::jsonb,
			notes         TEXT NOT NULL,
			points_earned INTEGER NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`},
	{"create idx_clinical_entries_user_shift", `
		CREATE INDEX IF NOT EXISTS idx_clinical_entries_user_shift
			ON clinical_entries (user_id, shift_date DESC, created_at DESC)`},
	{"create event_logs", `
		CREATE TABLE IF NOT EXISTS event_logs (
			id         BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			user_id    UUID NOT NULL,
			entry_id   UUID NULL,
			payload    JSONB NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`},
	{"create idx_event_logs_user_created", `
		CREATE INDEX IF NOT EXISTS idx_event_logs_user_created
			ON event_logs (user_id, created_at)`},
}

// Migrate creates the tracker schema if the database is behind
// SchemaVersion. All statements run in one transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("migrate: pool is nil")
	}

	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, step := range schemaV1 {
			if _, err := tx.Exec(ctx, step.sql); err != nil {
				return fmt.Errorf("migrate: %s: %w", step.name, err)
			}
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, SchemaVersion); err != nil {
			return fmt.Errorf("migrate: record schema version: %w", err)
		}
		return nil
	})
}
