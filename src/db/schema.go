package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema. Statements are idempotent so startup can run
// them unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS actors (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'OWNER',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS budget_sessions (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '#0070f3',
			icon TEXT NOT NULL DEFAULT '💰',
			actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_accessed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS linked_accounts (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			institution_code TEXT NOT NULL DEFAULT '',
			institution_name TEXT NOT NULL DEFAULT '',
			account_number TEXT NOT NULL DEFAULT '',
			account_kind TEXT NOT NULL,
			connection_kind TEXT NOT NULL,
			access_token TEXT,
			refresh_token TEXT,
			token_expires_at TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_synced_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			amount NUMERIC(19,2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL,
			actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
			category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
			session_id BIGINT REFERENCES budget_sessions(id) ON DELETE SET NULL,
			account_id BIGINT REFERENCES linked_accounts(id) ON DELETE SET NULL,
			transaction_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			external_id TEXT,
			sync_source TEXT NOT NULL DEFAULT 'MANUAL'
		)`,
		// Dedup key for externally synced transactions: one row per
		// (owning actor, external id).
		`CREATE UNIQUE INDEX IF NOT EXISTS transactions_actor_external_idx
			ON transactions (actor_id, external_id)
			WHERE external_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS transactions_actor_kind_idx
			ON transactions (actor_id, kind, transaction_date DESC)`,
	}

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
