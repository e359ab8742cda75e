package usecase

import (
	"context"
	"log"
	"time"

	"talent-bridge/internal/domain/negotiation"
	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/domain/veil"
	"talent-bridge/internal/repository"
)

// IdentityVeilUsecase is the single gate on the anonymization boundary.
// Nothing else copies candidate contact fields into client-visible state.
type IdentityVeilUsecase interface {
	Anonymize(sub *submission.Submission) veil.AnonymizedIdentity
	Reveal(ctx context.Context, neg *negotiation.Negotiation) (*submission.CandidateContact, error)
}

type IdentityVeil struct {
	submissions repository.SubmissionRepository
	log         *log.Logger
	now         func() time.Time
}

func NewIdentityVeilUsecase(submissions repository.SubmissionRepository, logger *log.Logger) *IdentityVeil {
	if logger == nil {
		logger = log.Default()
	}
	return &IdentityVeil{submissions: submissions, log: logger, now: time.Now}
}

func (u *IdentityVeil) Anonymize(sub *submission.Submission) veil.AnonymizedIdentity {
	if sub == nil {
		return veil.AnonymizedIdentity{}
	}
	return veil.Anonymize(sub.ID, sub.JobTitle)
}

// Reveal discloses candidate contact data for a consented, slot-selected
// negotiation. It is idempotent: the revealed flag flips at most once and a
// repeat call returns the same contact without touching revealed_at.
func (u *IdentityVeil) Reveal(ctx context.Context, neg *negotiation.Negotiation) (*submission.CandidateContact, error) {
	if neg == nil {
		return nil, ErrNotFound
	}
	if !neg.CandidateConsent || neg.SelectedSlot == nil {
		return nil, ErrConsentRequired
	}

	flipped, err := u.submissions.MarkIdentityRevealed(ctx, neg.SubmissionID, u.now().UTC())
	if err != nil {
		u.log.Printf("veil reveal step=mark submission=%s status=error err=%v", neg.SubmissionID, err)
		return nil, ErrInternal
	}
	if flipped {
		u.log.Printf("veil reveal submission=%s negotiation=%s", neg.SubmissionID, neg.ID)
	}

	contact, err := u.submissions.Contact(ctx, neg.SubmissionID)
	if err != nil {
		u.log.Printf("veil reveal step=contact submission=%s status=error err=%v", neg.SubmissionID, err)
		return nil, ErrInternal
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}
