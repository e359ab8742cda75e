package urgency

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// ActionType classifies what a client is being asked to act on.
type ActionType string

const (
	ActionDecisionPending  ActionType = "decision_pending"
	ActionInterviewPending ActionType = "interview_pending"
	ActionOfferPending     ActionType = "offer_pending"
)

// Threshold holds the waiting-hour cutoffs for one action type.
type Threshold struct {
	WarningHours  int
	CriticalHours int
}

// thresholds is the empirically tuned table; every tier decision goes
// through it rather than per-call-site constants.
var thresholds = map[ActionType]Threshold{
	ActionDecisionPending:  {WarningHours: 24, CriticalHours: 48},
	ActionInterviewPending: {WarningHours: 48, CriticalHours: 72},
	ActionOfferPending:     {WarningHours: 72, CriticalHours: 96},
}

// interviewDashboardThreshold weights interviews higher for dashboard
// surfaces that want earlier warnings.
var interviewDashboardThreshold = Threshold{WarningHours: 24, CriticalHours: 72}

// ThresholdFor returns the cutoff table entry for t. The dashboard variant
// applies only to interview-pending items.
func ThresholdFor(t ActionType, dashboard bool) Threshold {
	if dashboard && t == ActionInterviewPending {
		return interviewDashboardThreshold
	}
	th, ok := thresholds[t]
	if !ok {
		return thresholds[ActionDecisionPending]
	}
	return th
}

// WaitingHours is floor((now - createdAt) / 1h), clamped to zero to guard
// clock skew.
func WaitingHours(now, createdAt time.Time) int {
	if now.Before(createdAt) {
		return 0
	}
	return int(now.Sub(createdAt) / time.Hour)
}

// TierFor derives the urgency tier for one item. Pure: safe to recompute on
// every read.
func TierFor(actionType ActionType, now, createdAt time.Time, dashboard bool) Tier {
	th := ThresholdFor(actionType, dashboard)
	h := WaitingHours(now, createdAt)
	switch {
	case h >= th.CriticalHours:
		return TierCritical
	case h >= th.WarningHours:
		return TierWarning
	default:
		return TierNormal
	}
}

// Item is one row of the client-facing action queue. Computed on read,
// never stored.
type Item struct {
	SubmissionID   uuid.UUID  `json:"submission_id"`
	NegotiationID  *uuid.UUID `json:"negotiation_id,omitempty"`
	ActionType     ActionType `json:"action_type"`
	CandidateLabel string     `json:"candidate_label"`
	Tier           Tier       `json:"tier"`
	WaitingHours   int        `json:"waiting_hours"`
	CreatedAt      time.Time  `json:"created_at"`
}

var tierRank = map[Tier]int{
	TierCritical: 0,
	TierWarning:  1,
	TierNormal:   2,
}

// Rank sorts items in place: tier first, then descending waiting hours, so
// the single oldest critical item always leads. Ties break on submission id
// to keep the order stable across recomputes.
func Rank(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := tierRank[items[i].Tier], tierRank[items[j].Tier]
		if ri != rj {
			return ri < rj
		}
		if items[i].WaitingHours != items[j].WaitingHours {
			return items[i].WaitingHours > items[j].WaitingHours
		}
		return items[i].SubmissionID.String() < items[j].SubmissionID.String()
	})
}

// HealthInput feeds the composite queue health score.
type HealthInput struct {
	CriticalCount    int
	WarningCount     int
	RecentCandidates int
	RecentPlacements int
	ActiveJobs       int
}

// HealthScore is 100 - 15*critical - 5*warning, nudged up for recent
// positive activity and penalized when no jobs are active, clamped to
// [0,100].
func HealthScore(in HealthInput) int {
	score := 100 - 15*in.CriticalCount - 5*in.WarningCount

	if in.RecentCandidates > 0 {
		score += 2
	}
	if in.RecentPlacements > 0 {
		score += 5
	}
	if in.ActiveJobs == 0 {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
