package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"talent-bridge/internal/domain/negotiation"
	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/notify"
	"talent-bridge/internal/repository"

	"github.com/google/uuid"
)

// Emitter is the fanout boundary. Emit is fire-and-forget; it never blocks
// a transition and never surfaces an error here.
type Emitter interface {
	Emit(negotiationID uuid.UUID, targetState string, recipients []notify.Recipient, templateKey string, data map[string]any)
}

// PipelineHook receives terminal negotiation outcomes. Implemented by the
// pipeline usecase; mocked in tests.
type PipelineHook interface {
	OnNegotiationCompleted(ctx context.Context, submissionID uuid.UUID) error
}

type ProposeInput struct {
	SubmissionID uuid.UUID
	Slots        []time.Time
	Message      string
}

type NegotiationUsecase interface {
	Propose(ctx context.Context, in ProposeInput) (*negotiation.Negotiation, error)
	ConfirmOptIn(ctx context.Context, negotiationID uuid.UUID, slot time.Time) (*negotiation.Negotiation, *submission.CandidateContact, error)
	Cancel(ctx context.Context, negotiationID uuid.UUID, reason string, notifyParties bool) (*negotiation.Negotiation, error)
	ReportNoShow(ctx context.Context, negotiationID uuid.UUID, party negotiation.NoShowParty) (*negotiation.Negotiation, error)
	Complete(ctx context.Context, negotiationID uuid.UUID) (*negotiation.Negotiation, error)
}

type Negotiation struct {
	negotiations repository.NegotiationRepository
	submissions  repository.SubmissionRepository
	veil         IdentityVeilUsecase
	pipeline     PipelineHook
	fanout       Emitter
	log          *log.Logger
	now          func() time.Time
}

func NewNegotiationUsecase(
	negotiations repository.NegotiationRepository,
	submissions repository.SubmissionRepository,
	veilUC IdentityVeilUsecase,
	pipeline PipelineHook,
	fanout Emitter,
	logger *log.Logger,
) *Negotiation {
	if logger == nil {
		logger = log.Default()
	}
	return &Negotiation{
		negotiations: negotiations,
		submissions:  submissions,
		veil:         veilUC,
		pipeline:     pipeline,
		fanout:       fanout,
		log:          logger,
		now:          time.Now,
	}
}

// Propose opens a negotiation for a submission, or re-proposes slots when
// the active one is waiting on rescheduling. The partial unique index at the
// persistence layer backs the one-active-negotiation rule under races.
func (u *Negotiation) Propose(ctx context.Context, in ProposeInput) (*negotiation.Negotiation, error) {
	now := u.now().UTC()

	if !negotiation.ValidateSlots(in.Slots, now) {
		return nil, ErrSlotInvalid
	}

	sub, err := u.submissions.FindByID(ctx, in.SubmissionID)
	if err != nil {
		u.log.Printf("negotiation propose step=load_submission submission=%s status=error err=%v", in.SubmissionID, err)
		return nil, ErrInternal
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.Terminal() {
		return nil, ErrInvalidTransition
	}

	active, err := u.negotiations.FindActiveBySubmission(ctx, in.SubmissionID)
	if err != nil {
		u.log.Printf("negotiation propose step=load_active submission=%s status=error err=%v", in.SubmissionID, err)
		return nil, ErrInternal
	}
	if active != nil {
		if active.Status != negotiation.StatusReschedulingNeeded {
			return nil, ErrNegotiationInProgress
		}
		return u.repropose(ctx, sub, active, in, now)
	}

	neg := &negotiation.Negotiation{
		ID:            uuid.New(),
		SubmissionID:  in.SubmissionID,
		Status:        negotiation.StatusPendingOptIn,
		ProposedSlots: in.Slots,
		ClientMessage: in.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.negotiations.Create(ctx, neg); err != nil {
		if errors.Is(err, repository.ErrActiveNegotiationExists) {
			return nil, ErrNegotiationInProgress
		}
		u.log.Printf("negotiation propose step=create submission=%s status=error err=%v", in.SubmissionID, err)
		return nil, ErrInternal
	}

	// Candidate consent is solicited out-of-band by the recruiter.
	u.fanout.Emit(neg.ID, string(neg.Status), []notify.Recipient{
		{ID: sub.RecruiterID, Role: "recruiter"},
	}, "interview_proposed", map[string]any{
		"submission_id":   sub.ID.String(),
		"candidate_label": u.veil.Anonymize(sub).Label,
		"slot_count":      len(in.Slots),
	})

	return neg, nil
}

func (u *Negotiation) repropose(ctx context.Context, sub *submission.Submission, active *negotiation.Negotiation, in ProposeInput, now time.Time) (*negotiation.Negotiation, error) {
	ok, err := u.negotiations.ReproposeIf(ctx, active.ID, in.Slots, in.Message, now)
	if err != nil {
		u.log.Printf("negotiation repropose negotiation=%s status=error err=%v", active.ID, err)
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrNegotiationInProgress
	}

	updated, err := u.negotiations.FindByID(ctx, active.ID)
	if err != nil || updated == nil {
		u.log.Printf("negotiation repropose step=reload negotiation=%s status=error err=%v", active.ID, err)
		return nil, ErrInternal
	}

	u.fanout.Emit(updated.ID, string(updated.Status), []notify.Recipient{
		{ID: sub.RecruiterID, Role: "recruiter"},
		{ID: sub.CandidateID, Role: "candidate"},
	}, "interview_slots_reproposed", map[string]any{
		"submission_id": sub.ID.String(),
		"slot_count":    len(in.Slots),
	})

	return updated, nil
}

// ConfirmOptIn records the candidate's consent for a specific slot, books
// the interview, and performs the consented disclosure. A repeat call on an
// already scheduled negotiation is a no-op, not an error: retried requests
// must not double-book.
func (u *Negotiation) ConfirmOptIn(ctx context.Context, negotiationID uuid.UUID, slot time.Time) (*negotiation.Negotiation, *submission.CandidateContact, error) {
	neg, err := u.loadNegotiation(ctx, negotiationID, "confirm_opt_in")
	if err != nil {
		return nil, nil, err
	}

	if neg.Status == negotiation.StatusScheduled {
		contact, err := u.veil.Reveal(ctx, neg)
		if err != nil {
			return nil, nil, err
		}
		return neg, contact, nil
	}

	if neg.Status != negotiation.StatusPendingOptIn && neg.Status != negotiation.StatusPendingSlotSelect {
		return nil, nil, ErrInvalidTransition
	}
	if !neg.HasProposedSlot(slot) {
		return nil, nil, ErrSlotInvalid
	}

	now := u.now().UTC()
	ok, err := u.negotiations.ScheduleIf(ctx, neg.ID, neg.Status, slot, now)
	if err != nil {
		u.log.Printf("negotiation confirm_opt_in negotiation=%s status=error err=%v", neg.ID, err)
		return nil, nil, ErrInternal
	}
	if !ok {
		// Lost a race; re-read and treat a matching booking as the no-op case.
		current, err := u.loadNegotiation(ctx, negotiationID, "confirm_opt_in")
		if err != nil {
			return nil, nil, err
		}
		if current.Status == negotiation.StatusScheduled && current.SelectedSlot != nil && current.SelectedSlot.Equal(slot) {
			contact, err := u.veil.Reveal(ctx, current)
			if err != nil {
				return nil, nil, err
			}
			return current, contact, nil
		}
		return nil, nil, ErrInvalidTransition
	}

	neg.Status = negotiation.StatusScheduled
	neg.CandidateConsent = true
	neg.SelectedSlot = &slot
	neg.UpdatedAt = now

	contact, err := u.veil.Reveal(ctx, neg)
	if err != nil {
		return nil, nil, err
	}

	sub, err := u.submissions.FindByID(ctx, neg.SubmissionID)
	if err != nil || sub == nil {
		u.log.Printf("negotiation confirm_opt_in step=load_submission submission=%s status=error err=%v", neg.SubmissionID, err)
		return neg, contact, nil
	}

	u.fanout.Emit(neg.ID, string(neg.Status), []notify.Recipient{
		{ID: sub.ClientID, Role: "client"},
	}, "interview_scheduled", map[string]any{
		"submission_id":   sub.ID.String(),
		"slot":            slot.Format(time.RFC3339),
		"candidate_name":  contact.FullName,
		"candidate_email": contact.Email,
		"candidate_phone": contact.Phone,
	})

	return neg, contact, nil
}

// Cancel ends a negotiation from any non-terminal state. Cancelling an
// already-terminal negotiation returns it unchanged and never re-fires
// notifications; the stored cancellation reason is kept.
func (u *Negotiation) Cancel(ctx context.Context, negotiationID uuid.UUID, reason string, notifyParties bool) (*negotiation.Negotiation, error) {
	neg, err := u.loadNegotiation(ctx, negotiationID, "cancel")
	if err != nil {
		return nil, err
	}
	if neg.Status.Terminal() {
		return neg, nil
	}

	now := u.now().UTC()
	ok, err := u.negotiations.CancelIf(ctx, neg.ID, reason, now)
	if err != nil {
		u.log.Printf("negotiation cancel negotiation=%s status=error err=%v", neg.ID, err)
		return nil, ErrInternal
	}
	if !ok {
		// A concurrent transition won; report whatever state it reached.
		return u.loadNegotiation(ctx, negotiationID, "cancel")
	}

	neg.Status = negotiation.StatusCancelled
	neg.CancellationReason = &reason
	neg.UpdatedAt = now

	if notifyParties {
		sub, err := u.submissions.FindByID(ctx, neg.SubmissionID)
		if err != nil || sub == nil {
			u.log.Printf("negotiation cancel step=load_submission submission=%s status=error err=%v", neg.SubmissionID, err)
			return neg, nil
		}
		u.fanout.Emit(neg.ID, string(neg.Status), []notify.Recipient{
			{ID: sub.ClientID, Role: "client"},
			{ID: sub.RecruiterID, Role: "recruiter"},
			{ID: sub.CandidateID, Role: "candidate"},
		}, "negotiation_cancelled", map[string]any{
			"submission_id": sub.ID.String(),
			"reason":        reason,
		})
	}

	return neg, nil
}

// ReportNoShow records a missed interview once the slot time has elapsed. A
// technical failure re-opens scheduling instead of ending the negotiation.
func (u *Negotiation) ReportNoShow(ctx context.Context, negotiationID uuid.UUID, party negotiation.NoShowParty) (*negotiation.Negotiation, error) {
	switch party {
	case negotiation.NoShowCandidate, negotiation.NoShowClient, negotiation.NoShowTechnical:
	default:
		return nil, ErrInvalidTransition
	}

	neg, err := u.loadNegotiation(ctx, negotiationID, "report_no_show")
	if err != nil {
		return nil, err
	}
	if neg.Status != negotiation.StatusScheduled {
		return nil, ErrInvalidTransition
	}

	now := u.now().UTC()
	if neg.SelectedSlot == nil || neg.SelectedSlot.After(now) {
		// No pre-emptive no-show reports.
		return nil, ErrInvalidTransition
	}

	to := negotiation.StatusNoShow
	if party == negotiation.NoShowTechnical {
		to = negotiation.StatusReschedulingNeeded
	}

	ok, err := u.negotiations.MarkNoShowIf(ctx, neg.ID, party, to, now)
	if err != nil {
		u.log.Printf("negotiation report_no_show negotiation=%s status=error err=%v", neg.ID, err)
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	neg.Status = to
	neg.NoShowParty = &party
	neg.UpdatedAt = now

	if sub, err := u.submissions.FindByID(ctx, neg.SubmissionID); err == nil && sub != nil {
		u.fanout.Emit(neg.ID, string(to), []notify.Recipient{
			{ID: sub.ClientID, Role: "client"},
			{ID: sub.RecruiterID, Role: "recruiter"},
		}, "interview_no_show", map[string]any{
			"submission_id": sub.ID.String(),
			"party":         string(party),
		})
	}

	return neg, nil
}

// Complete closes out a finished interview, releasing the submission's
// active-negotiation slot and advancing the hiring pipeline one stage.
func (u *Negotiation) Complete(ctx context.Context, negotiationID uuid.UUID) (*negotiation.Negotiation, error) {
	neg, err := u.loadNegotiation(ctx, negotiationID, "complete")
	if err != nil {
		return nil, err
	}
	if neg.Status != negotiation.StatusScheduled {
		return nil, ErrInvalidTransition
	}

	now := u.now().UTC()
	if neg.SelectedSlot == nil || neg.SelectedSlot.After(now) {
		return nil, ErrInvalidTransition
	}

	ok, err := u.negotiations.CompleteIf(ctx, neg.ID, now)
	if err != nil {
		u.log.Printf("negotiation complete negotiation=%s status=error err=%v", neg.ID, err)
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	neg.Status = negotiation.StatusCompleted
	neg.CompletedAt = &now
	neg.UpdatedAt = now

	if err := u.pipeline.OnNegotiationCompleted(ctx, neg.SubmissionID); err != nil {
		u.log.Printf("negotiation complete step=advance submission=%s status=error err=%v", neg.SubmissionID, err)
	}

	if sub, err := u.submissions.FindByID(ctx, neg.SubmissionID); err == nil && sub != nil {
		u.fanout.Emit(neg.ID, string(neg.Status), []notify.Recipient{
			{ID: sub.RecruiterID, Role: "recruiter"},
		}, "interview_completed", map[string]any{
			"submission_id": sub.ID.String(),
		})
	}

	return neg, nil
}

func (u *Negotiation) loadNegotiation(ctx context.Context, id uuid.UUID, op string) (*negotiation.Negotiation, error) {
	neg, err := u.negotiations.FindByID(ctx, id)
	if err != nil {
		u.log.Printf("negotiation %s step=load negotiation=%s status=error err=%v", op, id, err)
		return nil, ErrInternal
	}
	if neg == nil {
		return nil, ErrNotFound
	}
	return neg, nil
}
