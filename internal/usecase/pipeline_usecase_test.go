package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"talent-bridge/internal/domain/submission"

	"github.com/google/uuid"
)

type mockOfferOpener struct {
	opened []uuid.UUID
	err    error
}

func (m *mockOfferOpener) OpenOffer(_ context.Context, submissionID uuid.UUID) error {
	m.opened = append(m.opened, submissionID)
	return m.err
}

type mockPlacementRecorder struct {
	recorded []uuid.UUID
}

func (m *mockPlacementRecorder) RecordPlacement(_ context.Context, submissionID uuid.UUID) error {
	m.recorded = append(m.recorded, submissionID)
	return nil
}

type pipelineFixture struct {
	uc         *Pipeline
	subs       *memSubmissionRepo
	offers     *mockOfferOpener
	placements *mockPlacementRecorder
	sub        *submission.Submission
}

func newPipelineFixture(t *testing.T, stage submission.Stage) *pipelineFixture {
	t.Helper()

	subs := newMemSubmissionRepo()
	offers := &mockOfferOpener{}
	placements := &mockPlacementRecorder{}
	uc := NewPipelineUsecase(subs, offers, placements, log.New(io.Discard, "", 0))
	uc.now = func() time.Time { return time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC) }

	sub := &submission.Submission{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		JobTitle:    "Platform Engineer",
		CandidateID: uuid.New(),
		RecruiterID: uuid.New(),
		ClientID:    uuid.New(),
		Stage:       stage,
		Status:      submission.StatusActive,
	}
	if err := subs.Create(context.Background(), sub, submission.CandidateContact{SubmissionID: sub.ID}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return &pipelineFixture{uc: uc, subs: subs, offers: offers, placements: placements, sub: sub}
}

func TestAdvance_LinearDefault(t *testing.T) {
	f := newPipelineFixture(t, submission.StageSubmitted)

	out, err := f.uc.Advance(context.Background(), AdvanceInput{SubmissionID: f.sub.ID})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Stage != submission.StageInterview1 {
		t.Fatalf("expected interview_1, got %s", out.Stage)
	}
}

func TestAdvance_ReachingOfferOpensOfferOnce(t *testing.T) {
	f := newPipelineFixture(t, submission.StageInterview2)

	out, err := f.uc.Advance(context.Background(), AdvanceInput{SubmissionID: f.sub.ID})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Stage != submission.StageOffer {
		t.Fatalf("expected offer, got %s", out.Stage)
	}
	if len(f.offers.opened) != 1 || f.offers.opened[0] != f.sub.ID {
		t.Fatalf("expected exactly one open-offer hook call, got %v", f.offers.opened)
	}
	if len(f.placements.recorded) != 0 {
		t.Fatalf("placement hook must not fire on offer")
	}
}

func TestAdvance_ExplicitHiredRecordsPlacement(t *testing.T) {
	f := newPipelineFixture(t, submission.StageOffer)

	hired := submission.StageHired
	out, err := f.uc.Advance(context.Background(), AdvanceInput{
		SubmissionID:  f.sub.ID,
		ExplicitStage: &hired,
		ActorRole:     RoleAdmin,
	})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out.Stage != submission.StageHired {
		t.Fatalf("expected hired, got %s", out.Stage)
	}
	if len(f.placements.recorded) != 1 {
		t.Fatalf("expected exactly one placement hook call")
	}
}

func TestAdvance_AdminMaySkipAhead(t *testing.T) {
	f := newPipelineFixture(t, submission.StageSubmitted)

	hired := submission.StageHired
	out, err := f.uc.Advance(context.Background(), AdvanceInput{
		SubmissionID:  f.sub.ID,
		ExplicitStage: &hired,
		ActorRole:     RoleAdmin,
	})
	if err != nil {
		t.Fatalf("admin skip-ahead: %v", err)
	}
	if out.Stage != submission.StageHired {
		t.Fatalf("expected hired, got %s", out.Stage)
	}
}

func TestAdvance_RecruiterCannotSkipOrHire(t *testing.T) {
	f := newPipelineFixture(t, submission.StageSubmitted)
	ctx := context.Background()

	offer := submission.StageOffer
	if _, err := f.uc.Advance(ctx, AdvanceInput{SubmissionID: f.sub.ID, ExplicitStage: &offer, ActorRole: RoleRecruiter}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for skip, got %v", err)
	}

	next := submission.StageInterview1
	if _, err := f.uc.Advance(ctx, AdvanceInput{SubmissionID: f.sub.ID, ExplicitStage: &next, ActorRole: RoleRecruiter}); err != nil {
		t.Fatalf("single forward step should pass: %v", err)
	}

	withdrawn := submission.StageWithdrawn
	if _, err := f.uc.Advance(ctx, AdvanceInput{SubmissionID: f.sub.ID, ExplicitStage: &withdrawn, ActorRole: RoleRecruiter}); err != nil {
		t.Fatalf("recruiter withdrawal should pass: %v", err)
	}
}

func TestAdvance_TerminalStageRejected(t *testing.T) {
	f := newPipelineFixture(t, submission.StageHired)

	_, err := f.uc.Advance(context.Background(), AdvanceInput{SubmissionID: f.sub.ID})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReject_IdempotentKeepsOriginalReason(t *testing.T) {
	f := newPipelineFixture(t, submission.StageInterview1)
	ctx := context.Background()

	out, err := f.uc.Reject(ctx, f.sub.ID, "skills_mismatch", "missing Go experience")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if out.Stage != submission.StageRejected {
		t.Fatalf("expected rejected, got %s", out.Stage)
	}

	again, err := f.uc.Reject(ctx, f.sub.ID, "other", "changed my mind")
	if err != nil {
		t.Fatalf("second reject: %v", err)
	}
	if again.RejectionCategory == nil || *again.RejectionCategory != "skills_mismatch" {
		t.Fatalf("original rejection category was overwritten: %v", again.RejectionCategory)
	}
}

func TestOnNegotiationCompleted_MovesOneLinearStage(t *testing.T) {
	f := newPipelineFixture(t, submission.StageInterview1)

	if err := f.uc.OnNegotiationCompleted(context.Background(), f.sub.ID); err != nil {
		t.Fatalf("auto advance: %v", err)
	}

	stored, _ := f.subs.FindByID(context.Background(), f.sub.ID)
	if stored.Stage != submission.StageInterview2 {
		t.Fatalf("expected interview_2, got %s", stored.Stage)
	}
}

func TestOnNegotiationCompleted_TerminalIsNoOp(t *testing.T) {
	f := newPipelineFixture(t, submission.StageRejected)

	if err := f.uc.OnNegotiationCompleted(context.Background(), f.sub.ID); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	stored, _ := f.subs.FindByID(context.Background(), f.sub.ID)
	if stored.Stage != submission.StageRejected {
		t.Fatalf("terminal stage moved")
	}
}
