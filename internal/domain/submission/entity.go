package submission

import (
	"time"

	"github.com/google/uuid"
)

// Stage is the coarse hiring-pipeline position of a submission, distinct
// from the status of any single interview negotiation.
type Stage string

const (
	StageSubmitted  Stage = "submitted"
	StageInterview1 Stage = "interview_1"
	StageInterview2 Stage = "interview_2"
	StageOffer      Stage = "offer"
	StageHired      Stage = "hired"
	StageRejected   Stage = "rejected"
	StageWithdrawn  Stage = "withdrawn"
)

// linearOrder is the default forward progression. Rejected and withdrawn
// are absorbing and reachable from any stage.
var linearOrder = []Stage{StageSubmitted, StageInterview1, StageInterview2, StageOffer, StageHired}

type Status string

const (
	StatusActive Status = "active"
	StatusOnHold Status = "on_hold"
	StatusClosed Status = "closed"
)

type Submission struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	JobTitle    string
	CandidateID uuid.UUID
	RecruiterID uuid.UUID
	ClientID    uuid.UUID

	Stage  Stage
	Status Status

	// MatchScore is attached at creation by an external scorer and never
	// recomputed here.
	MatchScore int

	IdentityRevealed bool
	RevealedAt       *time.Time

	RejectionCategory *string
	RejectionReason   *string

	CreatedAt      time.Time
	StageEnteredAt time.Time
}

// CandidateContact holds the fields that stay behind the veil until a
// consented disclosure.
type CandidateContact struct {
	SubmissionID uuid.UUID
	FullName     string
	Email        string
	Phone        string
}

func (s Stage) Valid() bool {
	switch s {
	case StageSubmitted, StageInterview1, StageInterview2, StageOffer, StageHired, StageRejected, StageWithdrawn:
		return true
	}
	return false
}

func (s Stage) Terminal() bool {
	return s == StageHired || s == StageRejected || s == StageWithdrawn
}

// Next returns the stage after s in the linear order. The second return is
// false when s is terminal or already the last linear stage.
func (s Stage) Next() (Stage, bool) {
	for i, st := range linearOrder {
		if st == s && i+1 < len(linearOrder) {
			return linearOrder[i+1], true
		}
	}
	return s, false
}

// Index reports s's position in the linear order, -1 for the absorbing
// stages.
func (s Stage) Index() int {
	for i, st := range linearOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s *Submission) Terminal() bool {
	if s == nil {
		return true
	}
	return s.Stage.Terminal()
}
