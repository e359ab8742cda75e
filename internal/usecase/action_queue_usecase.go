package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"talent-bridge/internal/domain/urgency"
	"talent-bridge/internal/domain/veil"
	"talent-bridge/internal/repository"

	"github.com/google/uuid"
)

// QueueCache is the slice of the redis wrapper the queue needs; a nil cache
// just recomputes on every read, which is always safe (the projection is
// pure over stored rows).
type QueueCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const actionQueueCacheTTL = 30 * time.Second

type ActionQueue struct {
	Items       []urgency.Item `json:"items"`
	HealthScore int            `json:"health_score"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type ActionQueueUsecase interface {
	GetQueue(ctx context.Context, clientID uuid.UUID, dashboard bool) (ActionQueue, error)
}

type Queue struct {
	items repository.ActionItemRepository
	cache QueueCache
	log   *log.Logger
	now   func() time.Time
}

func NewActionQueueUsecase(items repository.ActionItemRepository, cache QueueCache, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.Default()
	}
	return &Queue{items: items, cache: cache, log: logger, now: time.Now}
}

// GetQueue recomputes the ranked action queue for one client. Items are a
// projection, never stored; only the short-lived response cache keeps a
// copy.
func (u *Queue) GetQueue(ctx context.Context, clientID uuid.UUID, dashboard bool) (ActionQueue, error) {
	if clientID == uuid.Nil {
		return ActionQueue{}, ErrUnauthorized
	}

	key := fmt.Sprintf("action_queue:%s:%t", clientID, dashboard)
	if u.cache != nil {
		var cached ActionQueue
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.log.Printf("action_queue step=cache_get client=%s status=error err=%v", clientID, err)
		}
		if hit {
			return cached, nil
		}
	}

	now := u.now().UTC()
	items := make([]urgency.Item, 0)

	negs, err := u.items.ListOpenNegotiations(ctx, clientID)
	if err != nil {
		u.log.Printf("action_queue step=negotiations client=%s status=error err=%v", clientID, err)
		return ActionQueue{}, ErrInternal
	}
	for _, row := range negs {
		negID := row.NegotiationID
		items = append(items, urgency.Item{
			SubmissionID:   row.SubmissionID,
			NegotiationID:  &negID,
			ActionType:     urgency.ActionInterviewPending,
			CandidateLabel: veil.Anonymize(row.SubmissionID, row.JobTitle).Label,
			Tier:           urgency.TierFor(urgency.ActionInterviewPending, now, row.CreatedAt, dashboard),
			WaitingHours:   urgency.WaitingHours(now, row.CreatedAt),
			CreatedAt:      row.CreatedAt,
		})
	}

	decisions, err := u.items.ListPendingDecisions(ctx, clientID)
	if err != nil {
		u.log.Printf("action_queue step=decisions client=%s status=error err=%v", clientID, err)
		return ActionQueue{}, ErrInternal
	}
	items = appendSubmissionItems(items, decisions, urgency.ActionDecisionPending, now, dashboard)

	offers, err := u.items.ListPendingOffers(ctx, clientID)
	if err != nil {
		u.log.Printf("action_queue step=offers client=%s status=error err=%v", clientID, err)
		return ActionQueue{}, ErrInternal
	}
	items = appendSubmissionItems(items, offers, urgency.ActionOfferPending, now, dashboard)

	urgency.Rank(items)

	var critical, warning int
	for _, it := range items {
		switch it.Tier {
		case urgency.TierCritical:
			critical++
		case urgency.TierWarning:
			warning++
		}
	}

	activity, err := u.items.GetClientActivity(ctx, clientID, now)
	if err != nil {
		u.log.Printf("action_queue step=activity client=%s status=error err=%v", clientID, err)
		return ActionQueue{}, ErrInternal
	}

	queue := ActionQueue{
		Items: items,
		HealthScore: urgency.HealthScore(urgency.HealthInput{
			CriticalCount:    critical,
			WarningCount:     warning,
			RecentCandidates: activity.RecentCandidates,
			RecentPlacements: activity.RecentPlacements,
			ActiveJobs:       activity.ActiveJobs,
		}),
		GeneratedAt: now,
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, queue, actionQueueCacheTTL); err != nil {
			u.log.Printf("action_queue step=cache_set client=%s status=error err=%v", clientID, err)
		}
	}

	return queue, nil
}

func appendSubmissionItems(items []urgency.Item, rows []repository.PendingSubmissionRow, actionType urgency.ActionType, now time.Time, dashboard bool) []urgency.Item {
	for _, row := range rows {
		items = append(items, urgency.Item{
			SubmissionID:   row.SubmissionID,
			ActionType:     actionType,
			CandidateLabel: veil.Anonymize(row.SubmissionID, row.JobTitle).Label,
			Tier:           urgency.TierFor(actionType, now, row.EnteredAt, dashboard),
			WaitingHours:   urgency.WaitingHours(now, row.EnteredAt),
			CreatedAt:      row.EnteredAt,
		})
	}
	return items
}
