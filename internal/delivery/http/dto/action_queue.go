package dto

import (
	"time"

	"github.com/google/uuid"
)

type ActionQueueItemResponse struct {
	SubmissionID   uuid.UUID  `json:"submission_id"`
	NegotiationID  *uuid.UUID `json:"negotiation_id,omitempty"`
	ActionType     string     `json:"action_type"`
	CandidateLabel string     `json:"candidate_label"`
	Tier           string     `json:"tier"`
	WaitingHours   int        `json:"waiting_hours"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ActionQueueResponse struct {
	Items       []ActionQueueItemResponse `json:"items"`
	HealthScore int                       `json:"health_score"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
