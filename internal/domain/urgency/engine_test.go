package urgency

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWaitingHours_ClampsClockSkew(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if h := WaitingHours(now, now.Add(2*time.Hour)); h != 0 {
		t.Fatalf("expected 0 for future createdAt, got %d", h)
	}
}

func TestWaitingHours_Floors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-90 * time.Minute)
	if h := WaitingHours(now, created); h != 1 {
		t.Fatalf("expected 1, got %d", h)
	}
}

func TestWaitingHours_Monotonic(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prev := -1
	for i := 0; i < 48; i++ {
		now := created.Add(time.Duration(i) * 30 * time.Minute)
		h := WaitingHours(now, created)
		if h < prev {
			t.Fatalf("waiting hours decreased: %d -> %d at step %d", prev, h, i)
		}
		prev = h
	}
}

func TestTierFor_InterviewThresholds(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		hours int
		want  Tier
	}{
		{0, TierNormal},
		{47, TierNormal},
		{48, TierWarning},
		{71, TierWarning},
		{72, TierCritical},
		{73, TierCritical},
	}
	for _, tc := range cases {
		now := created.Add(time.Duration(tc.hours) * time.Hour)
		if got := TierFor(ActionInterviewPending, now, created, false); got != tc.want {
			t.Fatalf("at %dh expected %s, got %s", tc.hours, tc.want, got)
		}
	}
}

func TestTierFor_DashboardVariantWeightsInterviews(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(30 * time.Hour)

	if got := TierFor(ActionInterviewPending, now, created, false); got != TierNormal {
		t.Fatalf("expected normal on default thresholds, got %s", got)
	}
	if got := TierFor(ActionInterviewPending, now, created, true); got != TierWarning {
		t.Fatalf("expected warning on dashboard thresholds, got %s", got)
	}
	// The variant only applies to interviews.
	if got := TierFor(ActionDecisionPending, now, created, true); got != TierWarning {
		t.Fatalf("expected warning for decision at 30h, got %s", got)
	}
}

func TestTierFor_OfferThresholds(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := TierFor(ActionOfferPending, created.Add(72*time.Hour), created, false); got != TierWarning {
		t.Fatalf("expected warning at 72h, got %s", got)
	}
	if got := TierFor(ActionOfferPending, created.Add(96*time.Hour), created, false); got != TierCritical {
		t.Fatalf("expected critical at 96h, got %s", got)
	}
}

func TestRank_TierBeforeAge(t *testing.T) {
	// A critical item created later must still rank above an older warning.
	items := []Item{
		{SubmissionID: uuid.New(), Tier: TierWarning, WaitingHours: 200},
		{SubmissionID: uuid.New(), Tier: TierCritical, WaitingHours: 50},
		{SubmissionID: uuid.New(), Tier: TierNormal, WaitingHours: 500},
		{SubmissionID: uuid.New(), Tier: TierCritical, WaitingHours: 80},
	}

	Rank(items)

	if items[0].Tier != TierCritical || items[0].WaitingHours != 80 {
		t.Fatalf("expected oldest critical first, got %+v", items[0])
	}
	if items[1].Tier != TierCritical || items[1].WaitingHours != 50 {
		t.Fatalf("expected younger critical second, got %+v", items[1])
	}
	if items[2].Tier != TierWarning {
		t.Fatalf("expected warning third, got %+v", items[2])
	}
	if items[3].Tier != TierNormal {
		t.Fatalf("expected normal last, got %+v", items[3])
	}
}

func TestHealthScore(t *testing.T) {
	cases := []struct {
		name string
		in   HealthInput
		want int
	}{
		{"clean queue", HealthInput{ActiveJobs: 3}, 100},
		{"two critical one warning", HealthInput{CriticalCount: 2, WarningCount: 1, ActiveJobs: 3}, 65},
		{"recent placement bonus", HealthInput{CriticalCount: 1, RecentPlacements: 1, ActiveJobs: 2}, 90},
		{"no active jobs penalty", HealthInput{}, 80},
		{"clamped low", HealthInput{CriticalCount: 10}, 0},
		{"clamped high", HealthInput{RecentCandidates: 5, RecentPlacements: 2, ActiveJobs: 1}, 100},
	}

	for _, tc := range cases {
		if got := HealthScore(tc.in); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
