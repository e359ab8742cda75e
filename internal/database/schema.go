package database

import (
	"context"
	"fmt"
)

// schemaStatements is idempotent and safe to run on every boot. The partial
// unique index on interview_negotiations is what makes "at most one active
// negotiation per submission" hold across processes: a racing second propose
// hits a unique violation instead of double-booking.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		job_id UUID NOT NULL,
		job_title TEXT NOT NULL,
		candidate_id UUID NOT NULL,
		recruiter_id UUID NOT NULL,
		client_id UUID NOT NULL,
		stage TEXT NOT NULL DEFAULT 'submitted',
		status TEXT NOT NULL DEFAULT 'active',
		match_score INT NOT NULL DEFAULT 0,
		identity_revealed BOOLEAN NOT NULL DEFAULT FALSE,
		revealed_at TIMESTAMPTZ,
		rejection_category TEXT,
		rejection_reason TEXT,
		candidate_full_name TEXT NOT NULL DEFAULT '',
		candidate_email TEXT NOT NULL DEFAULT '',
		candidate_phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		stage_entered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS interview_negotiations (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL REFERENCES submissions(id),
		status TEXT NOT NULL DEFAULT 'pending_opt_in',
		proposed_slots TIMESTAMPTZ[] NOT NULL,
		selected_slot TIMESTAMPTZ,
		client_message TEXT NOT NULL DEFAULT '',
		candidate_consent BOOLEAN NOT NULL DEFAULT FALSE,
		cancellation_reason TEXT,
		no_show_party TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_active_negotiation_per_submission
		ON interview_negotiations (submission_id)
		WHERE status NOT IN ('completed', 'cancelled', 'no_show')`,

	`CREATE INDEX IF NOT EXISTS ix_negotiations_submission
		ON interview_negotiations (submission_id)`,

	`CREATE INDEX IF NOT EXISTS ix_submissions_client_stage
		ON submissions (client_id, stage)`,
}

// EnsureSchema creates the core tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, db DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
