package integration

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"talent-bridge/internal/domain/negotiation"
	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/domain/urgency"
	"talent-bridge/internal/notify"
	"talent-bridge/internal/repository"
	"talent-bridge/internal/usecase"

	"github.com/google/uuid"
)

// store backs every repository interface with the same maps, so the
// usecases under test observe each other's writes the way they would
// through Postgres.
type store struct {
	subs     map[uuid.UUID]*submission.Submission
	contacts map[uuid.UUID]submission.CandidateContact
	negs     map[uuid.UUID]*negotiation.Negotiation
}

func newStore() *store {
	return &store{
		subs:     map[uuid.UUID]*submission.Submission{},
		contacts: map[uuid.UUID]submission.CandidateContact{},
		negs:     map[uuid.UUID]*negotiation.Negotiation{},
	}
}

func (s *store) Create(_ context.Context, sub *submission.Submission, contact submission.CandidateContact) error {
	cp := *sub
	s.subs[sub.ID] = &cp
	s.contacts[sub.ID] = contact
	return nil
}

func (s *store) FindByID(_ context.Context, id uuid.UUID) (*submission.Submission, error) {
	sub, ok := s.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (s *store) Contact(_ context.Context, id uuid.UUID) (*submission.CandidateContact, error) {
	c, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *store) UpdateStageIf(_ context.Context, id uuid.UUID, from, to submission.Stage, at time.Time) (bool, error) {
	sub, ok := s.subs[id]
	if !ok || sub.Stage != from {
		return false, nil
	}
	sub.Stage = to
	sub.StageEnteredAt = at
	return true, nil
}

func (s *store) RejectIf(_ context.Context, id uuid.UUID, category, reason string, at time.Time) (bool, error) {
	sub, ok := s.subs[id]
	if !ok || sub.Stage.Terminal() {
		return false, nil
	}
	sub.Stage = submission.StageRejected
	sub.StageEnteredAt = at
	sub.RejectionCategory = &category
	sub.RejectionReason = &reason
	return true, nil
}

func (s *store) MarkIdentityRevealed(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	sub, ok := s.subs[id]
	if !ok || sub.IdentityRevealed {
		return false, nil
	}
	sub.IdentityRevealed = true
	sub.RevealedAt = &at
	return true, nil
}

func (s *store) CreateNegotiation(_ context.Context, n *negotiation.Negotiation) error {
	for _, existing := range s.negs {
		if existing.SubmissionID == n.SubmissionID && existing.Active() {
			return repository.ErrActiveNegotiationExists
		}
	}
	cp := *n
	s.negs[n.ID] = &cp
	return nil
}

func (s *store) FindNegotiationByID(_ context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	n, ok := s.negs[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (s *store) FindActiveBySubmission(_ context.Context, submissionID uuid.UUID) (*negotiation.Negotiation, error) {
	for _, n := range s.negs {
		if n.SubmissionID == submissionID && n.Active() {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *store) ScheduleIf(_ context.Context, id uuid.UUID, from negotiation.Status, slot time.Time, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status != from {
		return false, nil
	}
	n.Status = negotiation.StatusScheduled
	n.CandidateConsent = true
	n.SelectedSlot = &slot
	n.UpdatedAt = at
	return true, nil
}

func (s *store) CancelIf(_ context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status.Terminal() {
		return false, nil
	}
	n.Status = negotiation.StatusCancelled
	n.CancellationReason = &reason
	n.UpdatedAt = at
	return true, nil
}

func (s *store) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to negotiation.Status, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status != from {
		return false, nil
	}
	n.Status = to
	n.UpdatedAt = at
	return true, nil
}

func (s *store) MarkNoShowIf(_ context.Context, id uuid.UUID, party negotiation.NoShowParty, to negotiation.Status, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status != negotiation.StatusScheduled {
		return false, nil
	}
	n.Status = to
	n.NoShowParty = &party
	n.UpdatedAt = at
	return true, nil
}

func (s *store) CompleteIf(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status != negotiation.StatusScheduled {
		return false, nil
	}
	n.Status = negotiation.StatusCompleted
	n.CompletedAt = &at
	n.UpdatedAt = at
	return true, nil
}

func (s *store) ReproposeIf(_ context.Context, id uuid.UUID, slots []time.Time, message string, at time.Time) (bool, error) {
	n, ok := s.negs[id]
	if !ok || n.Status != negotiation.StatusReschedulingNeeded {
		return false, nil
	}
	n.Status = negotiation.StatusPendingSlotSelect
	n.ProposedSlots = slots
	n.SelectedSlot = nil
	n.ClientMessage = message
	n.UpdatedAt = at
	return true, nil
}

// negotiationStore narrows store to the negotiation repository interface,
// whose method names clash with the submission repository's.
type negotiationStore struct{ *store }

func (s negotiationStore) Create(ctx context.Context, n *negotiation.Negotiation) error {
	return s.store.CreateNegotiation(ctx, n)
}

func (s negotiationStore) FindByID(ctx context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	return s.store.FindNegotiationByID(ctx, id)
}

var openStatuses = map[negotiation.Status]bool{
	negotiation.StatusPendingOptIn:       true,
	negotiation.StatusPendingSlotSelect:  true,
	negotiation.StatusReschedulingNeeded: true,
}

func (s *store) ListOpenNegotiations(_ context.Context, clientID uuid.UUID) ([]repository.OpenNegotiationRow, error) {
	var rows []repository.OpenNegotiationRow
	for _, n := range s.negs {
		if !openStatuses[n.Status] {
			continue
		}
		sub, ok := s.subs[n.SubmissionID]
		if !ok || sub.ClientID != clientID {
			continue
		}
		rows = append(rows, repository.OpenNegotiationRow{
			NegotiationID: n.ID,
			SubmissionID:  n.SubmissionID,
			JobTitle:      sub.JobTitle,
			Status:        string(n.Status),
			CreatedAt:     n.CreatedAt,
		})
	}
	return rows, nil
}

func (s *store) listPendingAtStage(clientID uuid.UUID, stage submission.Stage) []repository.PendingSubmissionRow {
	var rows []repository.PendingSubmissionRow
	for _, sub := range s.subs {
		if sub.ClientID != clientID || sub.Stage != stage || sub.Status != submission.StatusActive {
			continue
		}
		if active := s.hasActiveNegotiation(sub.ID); active {
			continue
		}
		rows = append(rows, repository.PendingSubmissionRow{
			SubmissionID: sub.ID,
			JobTitle:     sub.JobTitle,
			Stage:        string(sub.Stage),
			EnteredAt:    sub.StageEnteredAt,
		})
	}
	return rows
}

func (s *store) hasActiveNegotiation(submissionID uuid.UUID) bool {
	for _, n := range s.negs {
		if n.SubmissionID == submissionID && n.Active() {
			return true
		}
	}
	return false
}

func (s *store) ListPendingDecisions(_ context.Context, clientID uuid.UUID) ([]repository.PendingSubmissionRow, error) {
	return s.listPendingAtStage(clientID, submission.StageSubmitted), nil
}

func (s *store) ListPendingOffers(_ context.Context, clientID uuid.UUID) ([]repository.PendingSubmissionRow, error) {
	return s.listPendingAtStage(clientID, submission.StageOffer), nil
}

func (s *store) GetClientActivity(_ context.Context, clientID uuid.UUID, now time.Time) (repository.ClientActivitySummary, error) {
	var out repository.ClientActivitySummary
	jobs := map[uuid.UUID]bool{}
	for _, sub := range s.subs {
		if sub.ClientID != clientID {
			continue
		}
		if now.Sub(sub.CreatedAt) <= 7*24*time.Hour {
			out.RecentCandidates++
		}
		if sub.Stage == submission.StageHired && now.Sub(sub.StageEnteredAt) <= 30*24*time.Hour {
			out.RecentPlacements++
		}
		if sub.Status == submission.StatusActive && !sub.Stage.Terminal() {
			jobs[sub.JobID] = true
		}
	}
	out.ActiveJobs = len(jobs)
	return out, nil
}

type recordingEmitter struct {
	states []string
}

func (e *recordingEmitter) Emit(_ uuid.UUID, targetState string, _ []notify.Recipient, _ string, _ map[string]any) {
	e.states = append(e.states, targetState)
}

type countingHooks struct {
	offers     int
	placements int
}

func (h *countingHooks) OpenOffer(_ context.Context, _ uuid.UUID) error {
	h.offers++
	return nil
}

func (h *countingHooks) RecordPlacement(_ context.Context, _ uuid.UUID) error {
	h.placements++
	return nil
}

type env struct {
	store       *store
	emitter     *recordingEmitter
	hooks       *countingHooks
	submissions *usecase.Submission
	negotiation *usecase.Negotiation
	pipeline    *usecase.Pipeline
	queue       *usecase.Queue
}

func newEnv() *env {
	st := newStore()
	logger := log.New(io.Discard, "", 0)
	emitter := &recordingEmitter{}
	hooks := &countingHooks{}

	veilUC := usecase.NewIdentityVeilUsecase(st, logger)
	pipelineUC := usecase.NewPipelineUsecase(st, hooks, hooks, logger)
	negotiationUC := usecase.NewNegotiationUsecase(
		negotiationStore{st}, st, veilUC, pipelineUC, emitter, logger,
	)
	submissionUC := usecase.NewSubmissionUsecase(st, veilUC, logger)
	queueUC := usecase.NewActionQueueUsecase(st, nil, logger)

	return &env{
		store:       st,
		emitter:     emitter,
		hooks:       hooks,
		submissions: submissionUC,
		negotiation: negotiationUC,
		pipeline:    pipelineUC,
		queue:       queueUC,
	}
}

func (e *env) createSubmission(t *testing.T, clientID uuid.UUID) *submission.Submission {
	t.Helper()
	sub, err := e.submissions.Create(context.Background(), usecase.CreateSubmissionInput{
		JobID:             uuid.New(),
		JobTitle:          "Data Engineer",
		CandidateID:       uuid.New(),
		RecruiterID:       uuid.New(),
		ClientID:          clientID,
		MatchScore:        78,
		CandidateFullName: "Sam Doe",
		CandidateEmail:    "sam.doe@example.com",
		CandidatePhone:    "+1-555-0199",
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func waitForSlot(slot time.Time) {
	for !time.Now().After(slot) {
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHiringJourney(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	clientID := uuid.New()

	sub := e.createSubmission(t, clientID)

	// A fresh submission is a pending decision until slots go out.
	q, err := e.queue.GetQueue(ctx, clientID, false)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(q.Items) != 1 || q.Items[0].ActionType != urgency.ActionDecisionPending {
		t.Fatalf("queue before propose = %+v", q.Items)
	}

	slot := time.Now().Add(150 * time.Millisecond).UTC()
	neg, err := e.negotiation.Propose(ctx, usecase.ProposeInput{
		SubmissionID: sub.ID,
		Slots:        []time.Time{slot},
		Message:      "Intro round with the team",
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	// The open negotiation replaces the decision item.
	q, err = e.queue.GetQueue(ctx, clientID, false)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(q.Items) != 1 || q.Items[0].ActionType != urgency.ActionInterviewPending {
		t.Fatalf("queue after propose = %+v", q.Items)
	}
	if q.Items[0].NegotiationID == nil || *q.Items[0].NegotiationID != neg.ID {
		t.Fatal("queue item not keyed by the open negotiation")
	}

	scheduled, contact, err := e.negotiation.ConfirmOptIn(ctx, neg.ID, slot)
	if err != nil {
		t.Fatalf("opt-in: %v", err)
	}
	if scheduled.Status != negotiation.StatusScheduled {
		t.Fatalf("status = %s", scheduled.Status)
	}
	if contact == nil || contact.Email != "sam.doe@example.com" {
		t.Fatalf("contact after opt-in = %+v", contact)
	}

	view, err := e.submissions.GetClientView(ctx, sub.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.IdentityRevealed || view.Contact == nil {
		t.Fatal("disclosure not visible on the client view")
	}

	waitForSlot(slot)

	completed, err := e.negotiation.Complete(ctx, neg.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != negotiation.StatusCompleted {
		t.Fatalf("status = %s", completed.Status)
	}

	// The finished interview advanced the pipeline one stage.
	after, _ := e.store.FindByID(ctx, sub.ID)
	if after.Stage != submission.StageInterview1 {
		t.Fatalf("stage after complete = %s", after.Stage)
	}

	// Drive the rest of the pipeline; each collaborator hook fires once.
	for _, target := range []submission.Stage{
		submission.StageInterview2, submission.StageOffer, submission.StageHired,
	} {
		stage := target
		if _, err := e.pipeline.Advance(ctx, usecase.AdvanceInput{
			SubmissionID:  sub.ID,
			ExplicitStage: &stage,
			ActorRole:     usecase.RoleAdmin,
		}); err != nil {
			t.Fatalf("advance to %s: %v", target, err)
		}
	}
	if e.hooks.offers != 1 || e.hooks.placements != 1 {
		t.Fatalf("hooks fired offers=%d placements=%d", e.hooks.offers, e.hooks.placements)
	}

	q, err = e.queue.GetQueue(ctx, clientID, false)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(q.Items) != 0 {
		t.Fatalf("queue after hire = %+v", q.Items)
	}

	want := []string{"pending_opt_in", "scheduled", "completed"}
	if len(e.emitter.states) != len(want) {
		t.Fatalf("emitted states = %v", e.emitter.states)
	}
	for i, state := range want {
		if e.emitter.states[i] != state {
			t.Fatalf("emitted states = %v, want %v", e.emitter.states, want)
		}
	}
}

func TestTechnicalNoShowRescheduleJourney(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	clientID := uuid.New()

	sub := e.createSubmission(t, clientID)

	slot := time.Now().Add(120 * time.Millisecond).UTC()
	neg, err := e.negotiation.Propose(ctx, usecase.ProposeInput{
		SubmissionID: sub.ID,
		Slots:        []time.Time{slot},
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, _, err := e.negotiation.ConfirmOptIn(ctx, neg.ID, slot); err != nil {
		t.Fatalf("opt-in: %v", err)
	}

	waitForSlot(slot)

	broken, err := e.negotiation.ReportNoShow(ctx, neg.ID, negotiation.NoShowTechnical)
	if err != nil {
		t.Fatalf("no-show: %v", err)
	}
	if broken.Status != negotiation.StatusReschedulingNeeded {
		t.Fatalf("status = %s", broken.Status)
	}

	// The broken interview surfaces back on the action queue.
	q, err := e.queue.GetQueue(ctx, clientID, false)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(q.Items) != 1 || q.Items[0].ActionType != urgency.ActionInterviewPending {
		t.Fatalf("queue after no-show = %+v", q.Items)
	}

	// New slots reuse the same negotiation; consent survives.
	newSlot := time.Now().Add(200 * time.Millisecond).UTC()
	reproposed, err := e.negotiation.Propose(ctx, usecase.ProposeInput{
		SubmissionID: sub.ID,
		Slots:        []time.Time{newSlot},
	})
	if err != nil {
		t.Fatalf("repropose: %v", err)
	}
	if reproposed.ID != neg.ID {
		t.Fatal("repropose created a second negotiation")
	}
	if reproposed.Status != negotiation.StatusPendingSlotSelect {
		t.Fatalf("status = %s", reproposed.Status)
	}
	if !reproposed.CandidateConsent {
		t.Fatal("consent lost across rescheduling")
	}

	rebooked, _, err := e.negotiation.ConfirmOptIn(ctx, neg.ID, newSlot)
	if err != nil {
		t.Fatalf("re-book: %v", err)
	}
	if rebooked.Status != negotiation.StatusScheduled {
		t.Fatalf("status = %s", rebooked.Status)
	}
	if rebooked.SelectedSlot == nil || !rebooked.SelectedSlot.Equal(newSlot) {
		t.Fatal("new slot not booked")
	}
}
