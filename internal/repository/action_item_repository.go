package repository

import (
	"context"
	"time"

	"talent-bridge/internal/database"

	"github.com/google/uuid"
)

// OpenNegotiationRow is one negotiation still waiting on scheduling or
// confirmation, joined with enough submission context to label it.
type OpenNegotiationRow struct {
	NegotiationID uuid.UUID
	SubmissionID  uuid.UUID
	JobTitle      string
	Status        string
	CreatedAt     time.Time
}

// PendingSubmissionRow is a submission awaiting a client decision or offer
// action, with no negotiation in flight.
type PendingSubmissionRow struct {
	SubmissionID uuid.UUID
	JobTitle     string
	Stage        string
	EnteredAt    time.Time
}

// ClientActivitySummary feeds the composite health score.
type ClientActivitySummary struct {
	RecentCandidates int
	RecentPlacements int
	ActiveJobs       int
}

type ActionItemRepository interface {
	ListOpenNegotiations(ctx context.Context, clientID uuid.UUID) ([]OpenNegotiationRow, error)
	ListPendingDecisions(ctx context.Context, clientID uuid.UUID) ([]PendingSubmissionRow, error)
	ListPendingOffers(ctx context.Context, clientID uuid.UUID) ([]PendingSubmissionRow, error)
	GetClientActivity(ctx context.Context, clientID uuid.UUID, now time.Time) (ClientActivitySummary, error)
}

type PostgresActionItemRepository struct {
	db database.DB
}

func NewPostgresActionItemRepository(db database.DB) *PostgresActionItemRepository {
	return &PostgresActionItemRepository{db: db}
}

func (r *PostgresActionItemRepository) ListOpenNegotiations(ctx context.Context, clientID uuid.UUID) ([]OpenNegotiationRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT n.id, n.submission_id, s.job_title, n.status, n.created_at
		FROM interview_negotiations n
		JOIN submissions s ON s.id = n.submission_id
		WHERE s.client_id = $1
		  AND n.status IN ('pending_opt_in', 'pending_slot_selection', 'rescheduling_needed')
		ORDER BY n.created_at ASC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OpenNegotiationRow, 0)
	for rows.Next() {
		var it OpenNegotiationRow
		if err := rows.Scan(&it.NegotiationID, &it.SubmissionID, &it.JobTitle, &it.Status, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresActionItemRepository) ListPendingDecisions(ctx context.Context, clientID uuid.UUID) ([]PendingSubmissionRow, error) {
	return r.listPendingByStage(ctx, clientID, "submitted")
}

func (r *PostgresActionItemRepository) ListPendingOffers(ctx context.Context, clientID uuid.UUID) ([]PendingSubmissionRow, error) {
	return r.listPendingByStage(ctx, clientID, "offer")
}

func (r *PostgresActionItemRepository) listPendingByStage(ctx context.Context, clientID uuid.UUID, stage string) ([]PendingSubmissionRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.job_title, s.stage, s.stage_entered_at
		FROM submissions s
		WHERE s.client_id = $1 AND s.stage = $2 AND s.status = 'active'
		  AND NOT EXISTS (
			SELECT 1 FROM interview_negotiations n
			WHERE n.submission_id = s.id
			  AND n.status NOT IN ('completed', 'cancelled', 'no_show')
		  )
		ORDER BY s.stage_entered_at ASC`,
		clientID, stage,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingSubmissionRow, 0)
	for rows.Next() {
		var it PendingSubmissionRow
		if err := rows.Scan(&it.SubmissionID, &it.JobTitle, &it.Stage, &it.EnteredAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresActionItemRepository) GetClientActivity(ctx context.Context, clientID uuid.UUID, now time.Time) (ClientActivitySummary, error) {
	row := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE stage = 'hired' AND stage_entered_at >= $3),
			COUNT(DISTINCT job_id) FILTER (WHERE stage NOT IN ('hired', 'rejected', 'withdrawn') AND status = 'active')
		FROM submissions
		WHERE client_id = $1`,
		clientID, now.AddDate(0, 0, -7), now.AddDate(0, 0, -30),
	)

	var sum ClientActivitySummary
	if err := row.Scan(&sum.RecentCandidates, &sum.RecentPlacements, &sum.ActiveJobs); err != nil {
		return ClientActivitySummary{}, err
	}
	return sum, nil
}
