package repository

import (
	"context"
	"errors"
	"time"

	"talent-bridge/internal/database"
	"talent-bridge/internal/domain/negotiation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrActiveNegotiationExists surfaces the partial unique index on
// (submission_id) WHERE status is non-terminal. It is the persistence-level
// form of the one-active-negotiation invariant.
var ErrActiveNegotiationExists = errors.New("active negotiation already exists for submission")

const pgUniqueViolation = "23505"

type NegotiationRepository interface {
	Create(ctx context.Context, n *negotiation.Negotiation) error
	FindByID(ctx context.Context, id uuid.UUID) (*negotiation.Negotiation, error)
	FindActiveBySubmission(ctx context.Context, submissionID uuid.UUID) (*negotiation.Negotiation, error)

	// ScheduleIf performs the opt-in transition: only when the stored status
	// still matches from, it sets consent, the selected slot, and scheduled.
	ScheduleIf(ctx context.Context, id uuid.UUID, from negotiation.Status, slot time.Time, at time.Time) (bool, error)

	// CancelIf cancels from any non-terminal status and records the reason
	// once; a second cancel affects zero rows.
	CancelIf(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)

	// UpdateStatusIf is the generic conditional transition for the remaining
	// moves (no-show, rescheduling, complete).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to negotiation.Status, at time.Time) (bool, error)

	MarkNoShowIf(ctx context.Context, id uuid.UUID, party negotiation.NoShowParty, to negotiation.Status, at time.Time) (bool, error)
	CompleteIf(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// ReproposeIf replaces the slot set on a rescheduling_needed negotiation
	// and re-enters slot selection; consent survives the new round.
	ReproposeIf(ctx context.Context, id uuid.UUID, slots []time.Time, message string, at time.Time) (bool, error)
}

type PostgresNegotiationRepository struct {
	db database.DB
}

func NewPostgresNegotiationRepository(db database.DB) *PostgresNegotiationRepository {
	return &PostgresNegotiationRepository{db: db}
}

const negotiationColumns = `id, submission_id, status, proposed_slots, selected_slot,
	client_message, candidate_consent, cancellation_reason, no_show_party,
	created_at, updated_at, completed_at`

func (r *PostgresNegotiationRepository) Create(ctx context.Context, n *negotiation.Negotiation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO interview_negotiations (
			id, submission_id, status, proposed_slots, client_message,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$6)`,
		n.ID, n.SubmissionID, string(n.Status), n.ProposedSlots, n.ClientMessage, n.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrActiveNegotiationExists
		}
		return err
	}
	return nil
}

func (r *PostgresNegotiationRepository) FindByID(ctx context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+negotiationColumns+` FROM interview_negotiations WHERE id = $1`, id)
	return scanNegotiation(row)
}

func (r *PostgresNegotiationRepository) FindActiveBySubmission(ctx context.Context, submissionID uuid.UUID) (*negotiation.Negotiation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+negotiationColumns+`
		FROM interview_negotiations
		WHERE submission_id = $1 AND status NOT IN ('completed', 'cancelled', 'no_show')`,
		submissionID,
	)
	return scanNegotiation(row)
}

func (r *PostgresNegotiationRepository) ScheduleIf(ctx context.Context, id uuid.UUID, from negotiation.Status, slot time.Time, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = 'scheduled', candidate_consent = TRUE, selected_slot = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, string(from), slot, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresNegotiationRepository) CancelIf(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = 'cancelled', cancellation_reason = $2, updated_at = $3
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled', 'no_show')`,
		id, reason, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresNegotiationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to negotiation.Status, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresNegotiationRepository) MarkNoShowIf(ctx context.Context, id uuid.UUID, party negotiation.NoShowParty, to negotiation.Status, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = $3, no_show_party = $2, updated_at = $4
		WHERE id = $1 AND status = 'scheduled'`,
		id, string(party), string(to), at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresNegotiationRepository) CompleteIf(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'scheduled'`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresNegotiationRepository) ReproposeIf(ctx context.Context, id uuid.UUID, slots []time.Time, message string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE interview_negotiations
		SET status = 'pending_slot_selection', proposed_slots = $2, selected_slot = NULL,
			client_message = $3, updated_at = $4
		WHERE id = $1 AND status = 'rescheduling_needed'`,
		id, slots, message, at,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanNegotiation(row database.Row) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	var status string
	var party *string
	if err := row.Scan(
		&n.ID, &n.SubmissionID, &status, &n.ProposedSlots, &n.SelectedSlot,
		&n.ClientMessage, &n.CandidateConsent, &n.CancellationReason, &party,
		&n.CreatedAt, &n.UpdatedAt, &n.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.Status = negotiation.Status(status)
	if party != nil {
		p := negotiation.NoShowParty(*party)
		n.NoShowParty = &p
	}
	return &n, nil
}
