package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	JobID             string `json:"job_id"`
	JobTitle          string `json:"job_title"`
	CandidateID       string `json:"candidate_id"`
	RecruiterID       string `json:"recruiter_id"`
	ClientID          string `json:"client_id"`
	MatchScore        int    `json:"match_score"`
	CandidateFullName string `json:"candidate_full_name"`
	CandidateEmail    string `json:"candidate_email"`
	CandidatePhone    string `json:"candidate_phone"`
}

type SubmissionResponse struct {
	ID             uuid.UUID `json:"id"`
	JobID          uuid.UUID `json:"job_id"`
	Stage          string    `json:"stage"`
	Status         string    `json:"status"`
	MatchScore     int       `json:"match_score"`
	CreatedAt      time.Time `json:"created_at"`
	StageEnteredAt time.Time `json:"stage_entered_at"`
}

type CandidateContactResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type SubmissionViewResponse struct {
	ID               uuid.UUID                 `json:"id"`
	JobID            uuid.UUID                 `json:"job_id"`
	JobTitle         string                    `json:"job_title"`
	Stage            string                    `json:"stage"`
	Status           string                    `json:"status"`
	MatchScore       int                       `json:"match_score"`
	IdentityRevealed bool                      `json:"identity_revealed"`
	CandidateLabel   string                    `json:"candidate_label"`
	Contact          *CandidateContactResponse `json:"contact,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	StageEnteredAt   time.Time                 `json:"stage_entered_at"`
}

type AdvanceSubmissionRequest struct {
	// Stage is optional; empty means the next stage in order.
	Stage string `json:"stage"`
}

type RejectSubmissionRequest struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}
