package repository

import (
	"context"
	"errors"
	"time"

	"talent-bridge/internal/database"
	"talent-bridge/internal/domain/submission"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *submission.Submission, contact submission.CandidateContact) error
	FindByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error)
	Contact(ctx context.Context, id uuid.UUID) (*submission.CandidateContact, error)

	// UpdateStageIf moves the stage only when the stored stage still matches
	// from; false means a concurrent writer got there first.
	UpdateStageIf(ctx context.Context, id uuid.UUID, from, to submission.Stage, at time.Time) (bool, error)

	// RejectIf is terminal and conditional on the current stage not already
	// being terminal. The stored rejection reason is never overwritten.
	RejectIf(ctx context.Context, id uuid.UUID, category, reason string, at time.Time) (bool, error)

	// MarkIdentityRevealed flips identity_revealed exactly once; a second
	// call affects zero rows and leaves revealed_at untouched.
	MarkIdentityRevealed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type PostgresSubmissionRepository struct {
	db database.DB
}

func NewPostgresSubmissionRepository(db database.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{db: db}
}

const submissionColumns = `id, job_id, job_title, candidate_id, recruiter_id, client_id,
	stage, status, match_score, identity_revealed, revealed_at,
	rejection_category, rejection_reason, created_at, stage_entered_at`

func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub *submission.Submission, contact submission.CandidateContact) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO submissions (
			id, job_id, job_title, candidate_id, recruiter_id, client_id,
			stage, status, match_score,
			candidate_full_name, candidate_email, candidate_phone,
			created_at, stage_entered_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)`,
		sub.ID, sub.JobID, sub.JobTitle, sub.CandidateID, sub.RecruiterID, sub.ClientID,
		string(sub.Stage), string(sub.Status), sub.MatchScore,
		contact.FullName, contact.Email, contact.Phone,
		sub.CreatedAt,
	)
	return err
}

func (r *PostgresSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error) {
	row := r.db.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

func (r *PostgresSubmissionRepository) Contact(ctx context.Context, id uuid.UUID) (*submission.CandidateContact, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, candidate_full_name, candidate_email, candidate_phone
		FROM submissions WHERE id = $1`, id)

	var c submission.CandidateContact
	if err := row.Scan(&c.SubmissionID, &c.FullName, &c.Email, &c.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresSubmissionRepository) UpdateStageIf(ctx context.Context, id uuid.UUID, from, to submission.Stage, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE submissions
		SET stage = $3, stage_entered_at = $4
		WHERE id = $1 AND stage = $2`,
		id, string(from), string(to), at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresSubmissionRepository) RejectIf(ctx context.Context, id uuid.UUID, category, reason string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE submissions
		SET stage = 'rejected', stage_entered_at = $4,
			rejection_category = $2, rejection_reason = $3
		WHERE id = $1 AND stage NOT IN ('hired', 'rejected', 'withdrawn')`,
		id, category, reason, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresSubmissionRepository) MarkIdentityRevealed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE submissions
		SET identity_revealed = TRUE, revealed_at = $2
		WHERE id = $1 AND identity_revealed = FALSE`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanSubmission(row database.Row) (*submission.Submission, error) {
	var s submission.Submission
	var stage, status string
	if err := row.Scan(
		&s.ID, &s.JobID, &s.JobTitle, &s.CandidateID, &s.RecruiterID, &s.ClientID,
		&stage, &status, &s.MatchScore, &s.IdentityRevealed, &s.RevealedAt,
		&s.RejectionCategory, &s.RejectionReason, &s.CreatedAt, &s.StageEnteredAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Stage = submission.Stage(stage)
	s.Status = submission.Status(status)
	return &s, nil
}
