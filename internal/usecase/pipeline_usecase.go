package usecase

import (
	"context"
	"log"
	"time"

	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/repository"

	"github.com/google/uuid"
)

// OfferOpener and PlacementRecorder are collaborator subsystems, not owned
// here; they fire exactly once per transition that reaches offer / hired.
type OfferOpener interface {
	OpenOffer(ctx context.Context, submissionID uuid.UUID) error
}

type PlacementRecorder interface {
	RecordPlacement(ctx context.Context, submissionID uuid.UUID) error
}

const (
	RoleClient    = "client"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

type AdvanceInput struct {
	SubmissionID uuid.UUID
	// ExplicitStage overrides the linear default; nil means next(current).
	ExplicitStage *submission.Stage
	ActorRole     string
}

type PipelineUsecase interface {
	Advance(ctx context.Context, in AdvanceInput) (*submission.Submission, error)
	Reject(ctx context.Context, submissionID uuid.UUID, category, reason string) (*submission.Submission, error)
	OnNegotiationCompleted(ctx context.Context, submissionID uuid.UUID) error
}

type Pipeline struct {
	submissions repository.SubmissionRepository
	offers      OfferOpener
	placements  PlacementRecorder
	log         *log.Logger
	now         func() time.Time
}

func NewPipelineUsecase(
	submissions repository.SubmissionRepository,
	offers OfferOpener,
	placements PlacementRecorder,
	logger *log.Logger,
) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		submissions: submissions,
		offers:      offers,
		placements:  placements,
		log:         logger,
		now:         time.Now,
	}
}

// Advance moves a submission's stage. With no explicit stage it follows the
// linear order. Explicit moves are actor decisions: admins may jump
// anywhere non-terminal-to-valid, recruiters may only move one step forward
// or withdraw.
func (u *Pipeline) Advance(ctx context.Context, in AdvanceInput) (*submission.Submission, error) {
	sub, err := u.loadSubmission(ctx, in.SubmissionID, "advance")
	if err != nil {
		return nil, err
	}
	if sub.Terminal() {
		return nil, ErrInvalidTransition
	}

	var target submission.Stage
	if in.ExplicitStage != nil {
		target = *in.ExplicitStage
		if !target.Valid() || target == sub.Stage || target == submission.StageRejected {
			return nil, ErrInvalidTransition
		}
		if err := u.checkOverride(in.ActorRole, sub.Stage, target); err != nil {
			return nil, err
		}
	} else {
		next, ok := sub.Stage.Next()
		if !ok {
			return nil, ErrInvalidTransition
		}
		target = next
	}

	return u.transition(ctx, sub, target)
}

// checkOverride gates explicit stage moves. Admin overrides stay permissive,
// skip-ahead jumps included; recruiters get one forward step at a time and
// never hired, except withdrawal.
func (u *Pipeline) checkOverride(role string, from, to submission.Stage) error {
	switch role {
	case RoleAdmin:
		return nil
	case RoleRecruiter:
		if to == submission.StageWithdrawn {
			return nil
		}
		fromIdx, toIdx := from.Index(), to.Index()
		if fromIdx < 0 || toIdx < 0 {
			return ErrInvalidTransition
		}
		if toIdx != fromIdx+1 || to == submission.StageHired {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrUnauthorized
	}
}

// Reject is terminal and idempotent: rejecting an already-rejected
// submission returns it unchanged with the original reason intact.
func (u *Pipeline) Reject(ctx context.Context, submissionID uuid.UUID, category, reason string) (*submission.Submission, error) {
	sub, err := u.loadSubmission(ctx, submissionID, "reject")
	if err != nil {
		return nil, err
	}
	if sub.Stage == submission.StageRejected {
		return sub, nil
	}
	if sub.Terminal() {
		return nil, ErrInvalidTransition
	}

	now := u.now().UTC()
	ok, err := u.submissions.RejectIf(ctx, sub.ID, category, reason, now)
	if err != nil {
		u.log.Printf("pipeline reject submission=%s status=error err=%v", sub.ID, err)
		return nil, ErrInternal
	}
	if !ok {
		// A concurrent writer reached a terminal stage first.
		current, err := u.loadSubmission(ctx, submissionID, "reject")
		if err != nil {
			return nil, err
		}
		if current.Stage == submission.StageRejected {
			return current, nil
		}
		return nil, ErrInvalidTransition
	}

	sub.Stage = submission.StageRejected
	sub.StageEnteredAt = now
	sub.RejectionCategory = &category
	sub.RejectionReason = &reason
	return sub, nil
}

// OnNegotiationCompleted is the single automatic advance trigger: a finished
// interview moves the submission one linear stage. Submissions already past
// the interview rounds are left alone.
func (u *Pipeline) OnNegotiationCompleted(ctx context.Context, submissionID uuid.UUID) error {
	sub, err := u.loadSubmission(ctx, submissionID, "auto_advance")
	if err != nil {
		return err
	}
	if sub.Terminal() {
		return nil
	}

	next, ok := sub.Stage.Next()
	if !ok {
		return nil
	}

	_, err = u.transition(ctx, sub, next)
	return err
}

func (u *Pipeline) transition(ctx context.Context, sub *submission.Submission, target submission.Stage) (*submission.Submission, error) {
	now := u.now().UTC()

	ok, err := u.submissions.UpdateStageIf(ctx, sub.ID, sub.Stage, target, now)
	if err != nil {
		u.log.Printf("pipeline advance submission=%s from=%s to=%s status=error err=%v", sub.ID, sub.Stage, target, err)
		return nil, ErrInternal
	}
	if !ok {
		// Stale read: someone else moved the stage since we loaded it.
		return nil, ErrInvalidTransition
	}

	sub.Stage = target
	sub.StageEnteredAt = now

	// The conditional update above fired at most once for this transition,
	// so each hook fires at most once too. Hook failures belong to the
	// collaborator; the stage move stands.
	switch target {
	case submission.StageOffer:
		if u.offers != nil {
			if err := u.offers.OpenOffer(ctx, sub.ID); err != nil {
				u.log.Printf("pipeline hook=open_offer submission=%s status=error err=%v", sub.ID, err)
			}
		}
	case submission.StageHired:
		if u.placements != nil {
			if err := u.placements.RecordPlacement(ctx, sub.ID); err != nil {
				u.log.Printf("pipeline hook=record_placement submission=%s status=error err=%v", sub.ID, err)
			}
		}
	}

	return sub, nil
}

func (u *Pipeline) loadSubmission(ctx context.Context, id uuid.UUID, op string) (*submission.Submission, error) {
	sub, err := u.submissions.FindByID(ctx, id)
	if err != nil {
		u.log.Printf("pipeline %s step=load submission=%s status=error err=%v", op, id, err)
		return nil, ErrInternal
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}
