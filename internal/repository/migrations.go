package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS fee_plans (
		id            TEXT PRIMARY KEY,
		course        TEXT NOT NULL,
		academic_year TEXT NOT NULL,
		tuition       NUMERIC(12,2) NOT NULL DEFAULT 0,
		hostel        NUMERIC(12,2) NOT NULL DEFAULT 0,
		library       NUMERIC(12,2) NOT NULL DEFAULT 0,
		lab           NUMERIC(12,2) NOT NULL DEFAULT 0,
		sports        NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (course, academic_year)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id                    TEXT PRIMARY KEY,
		first_name            TEXT NOT NULL,
		last_name             TEXT NOT NULL,
		email                 TEXT NOT NULL UNIQUE,
		degree_type           TEXT NOT NULL DEFAULT '',
		degree_duration_years INT NOT NULL DEFAULT 0,
		courses               JSONB NOT NULL DEFAULT '[]',
		legacy_course         TEXT NOT NULL DEFAULT '',
		legacy_academic_year  TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS student_fees (
		id              TEXT PRIMARY KEY,
		student_id      TEXT NOT NULL,
		fee_plan_id     TEXT NOT NULL,
		course          TEXT NOT NULL,
		academic_year   TEXT NOT NULL,
		tuition         NUMERIC(12,2) NOT NULL DEFAULT 0,
		hostel          NUMERIC(12,2) NOT NULL DEFAULT 0,
		library         NUMERIC(12,2) NOT NULL DEFAULT 0,
		lab             NUMERIC(12,2) NOT NULL DEFAULT 0,
		sports          NUMERIC(12,2) NOT NULL DEFAULT 0,
		amount_assigned NUMERIC(12,2) NOT NULL DEFAULT 0,
		amount_paid     NUMERIC(12,2) NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'PENDING',
		assigned_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		due_date        TIMESTAMPTZ,
		version         BIGINT NOT NULL DEFAULT 0,
		UNIQUE (student_id, fee_plan_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_student_fees_student ON student_fees (student_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             TEXT PRIMARY KEY,
		student_fee_id TEXT NOT NULL,
		student_id     TEXT NOT NULL,
		payer_user_id  TEXT NOT NULL,
		method         TEXT NOT NULL,
		amount         NUMERIC(12,2) NOT NULL,
		paid_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		reference_no   TEXT NOT NULL DEFAULT '',
		notes          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_student_fee ON payments (student_fee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_method_paid_at ON payments (method, paid_at)`,
	`CREATE TABLE IF NOT EXISTS api_tokens (
		id         BIGSERIAL PRIMARY KEY,
		token_hash TEXT NOT NULL UNIQUE,
		user_id    BIGINT NOT NULL,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
