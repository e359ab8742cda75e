package negotiation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPendingOptIn       Status = "pending_opt_in"
	StatusPendingSlotSelect  Status = "pending_slot_selection"
	StatusScheduled          Status = "scheduled"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
	StatusNoShow             Status = "no_show"
	StatusReschedulingNeeded Status = "rescheduling_needed"
)

type NoShowParty string

const (
	NoShowCandidate NoShowParty = "candidate"
	NoShowClient    NoShowParty = "client"
	NoShowTechnical NoShowParty = "technical"
)

type Negotiation struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID

	Status        Status
	ProposedSlots []time.Time
	SelectedSlot  *time.Time
	ClientMessage string

	CandidateConsent   bool
	CancellationReason *string
	NoShowParty        *NoShowParty

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingOptIn, StatusPendingSlotSelect, StatusScheduled,
		StatusCompleted, StatusCancelled, StatusNoShow, StatusReschedulingNeeded:
		return true
	}
	return false
}

// Terminal reports whether s ends the negotiation. rescheduling_needed is
// open: the client may propose new slots for it.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

func (n *Negotiation) Active() bool {
	if n == nil {
		return false
	}
	return !n.Status.Terminal()
}

// HasProposedSlot reports whether t is one of the client-authored slots.
func (n *Negotiation) HasProposedSlot(t time.Time) bool {
	if n == nil {
		return false
	}
	for _, s := range n.ProposedSlots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

// ValidateSlots rejects empty, duplicate, or past-dated slot sets.
func ValidateSlots(slots []time.Time, now time.Time) bool {
	if len(slots) == 0 {
		return false
	}
	seen := make(map[int64]struct{}, len(slots))
	for _, s := range slots {
		if !s.After(now) {
			return false
		}
		k := s.UnixNano()
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}
