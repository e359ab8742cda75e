package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProposeNegotiationRequest struct {
	Slots   []time.Time `json:"slots"`
	Message string      `json:"message"`
}

type ConfirmOptInRequest struct {
	Slot time.Time `json:"slot"`
}

type CancelNegotiationRequest struct {
	Reason        string `json:"reason"`
	NotifyParties bool   `json:"notify_parties"`
}

type ReportNoShowRequest struct {
	Party string `json:"party"`
}

type NegotiationResponse struct {
	ID                 uuid.UUID   `json:"id"`
	SubmissionID       uuid.UUID   `json:"submission_id"`
	Status             string      `json:"status"`
	ProposedSlots      []time.Time `json:"proposed_slots"`
	SelectedSlot       *time.Time  `json:"selected_slot,omitempty"`
	ClientMessage      string      `json:"client_message,omitempty"`
	CandidateConsent   bool        `json:"candidate_consent"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	NoShowParty        *string     `json:"no_show_party,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
}

type ConfirmOptInResponse struct {
	Negotiation NegotiationResponse       `json:"negotiation"`
	Contact     *CandidateContactResponse `json:"contact,omitempty"`
}
