package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/repository"

	"github.com/google/uuid"
)

type CreateSubmissionInput struct {
	JobID       uuid.UUID
	JobTitle    string
	CandidateID uuid.UUID
	RecruiterID uuid.UUID
	ClientID    uuid.UUID

	// MatchScore comes from the external scorer, 0-100, never recomputed.
	MatchScore int

	CandidateFullName string
	CandidateEmail    string
	CandidatePhone    string
}

// SubmissionView is the client-facing read model. Before the consented
// disclosure only the anonymized label is populated; afterwards the contact
// block appears.
type SubmissionView struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	JobTitle         string
	Stage            submission.Stage
	Status           submission.Status
	MatchScore       int
	IdentityRevealed bool
	CandidateLabel   string
	Contact          *submission.CandidateContact
	CreatedAt        time.Time
	StageEnteredAt   time.Time
}

type SubmissionUsecase interface {
	Create(ctx context.Context, in CreateSubmissionInput) (*submission.Submission, error)
	GetClientView(ctx context.Context, id uuid.UUID) (SubmissionView, error)
}

type Submission struct {
	submissions repository.SubmissionRepository
	veil        IdentityVeilUsecase
	log         *log.Logger
	now         func() time.Time
}

func NewSubmissionUsecase(submissions repository.SubmissionRepository, veilUC IdentityVeilUsecase, logger *log.Logger) *Submission {
	if logger == nil {
		logger = log.Default()
	}
	return &Submission{submissions: submissions, veil: veilUC, log: logger, now: time.Now}
}

func (u *Submission) Create(ctx context.Context, in CreateSubmissionInput) (*submission.Submission, error) {
	if in.JobID == uuid.Nil || in.CandidateID == uuid.Nil || in.RecruiterID == uuid.Nil || in.ClientID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(in.JobTitle) == "" {
		return nil, ErrInvalidInput
	}
	if in.MatchScore < 0 || in.MatchScore > 100 {
		return nil, ErrInvalidInput
	}

	now := u.now().UTC()
	sub := &submission.Submission{
		ID:             uuid.New(),
		JobID:          in.JobID,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		CandidateID:    in.CandidateID,
		RecruiterID:    in.RecruiterID,
		ClientID:       in.ClientID,
		Stage:          submission.StageSubmitted,
		Status:         submission.StatusActive,
		MatchScore:     in.MatchScore,
		CreatedAt:      now,
		StageEnteredAt: now,
	}

	contact := submission.CandidateContact{
		SubmissionID: sub.ID,
		FullName:     in.CandidateFullName,
		Email:        in.CandidateEmail,
		Phone:        in.CandidatePhone,
	}

	if err := u.submissions.Create(ctx, sub, contact); err != nil {
		u.log.Printf("submission create job=%s status=error err=%v", in.JobID, err)
		return nil, ErrInternal
	}
	return sub, nil
}

func (u *Submission) GetClientView(ctx context.Context, id uuid.UUID) (SubmissionView, error) {
	sub, err := u.submissions.FindByID(ctx, id)
	if err != nil {
		u.log.Printf("submission view step=load submission=%s status=error err=%v", id, err)
		return SubmissionView{}, ErrInternal
	}
	if sub == nil {
		return SubmissionView{}, ErrNotFound
	}

	view := SubmissionView{
		ID:               sub.ID,
		JobID:            sub.JobID,
		JobTitle:         sub.JobTitle,
		Stage:            sub.Stage,
		Status:           sub.Status,
		MatchScore:       sub.MatchScore,
		IdentityRevealed: sub.IdentityRevealed,
		CandidateLabel:   u.veil.Anonymize(sub).Label,
		CreatedAt:        sub.CreatedAt,
		StageEnteredAt:   sub.StageEnteredAt,
	}

	if sub.IdentityRevealed {
		contact, err := u.submissions.Contact(ctx, sub.ID)
		if err != nil {
			u.log.Printf("submission view step=contact submission=%s status=error err=%v", id, err)
			return SubmissionView{}, ErrInternal
		}
		view.Contact = contact
	}

	return view, nil
}
