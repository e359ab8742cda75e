package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// ErrRecipientNotFound is returned by transports for unknown recipients.
// The fanout logs it and keeps going.
var ErrRecipientNotFound = errors.New("recipient not found")

type Recipient struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// Sender is the outbound transport boundary. Implementations must be safe
// for concurrent use.
type Sender interface {
	Send(ctx context.Context, recipient Recipient, templateKey string, data map[string]any) error
}

// Deduper is satisfied by the redis cache wrapper. A nil or unavailable
// deduper degrades to at-least-once delivery.
type Deduper interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// Fanout dispatches best-effort notifications on negotiation transitions.
// Failures are logged and never reach the caller; a transition is never
// fanned out twice for the same (negotiation id, target state) pair.
type Fanout struct {
	sender Sender
	dedup  Deduper
	logger *log.Logger

	sendTimeout time.Duration
	dedupTTL    time.Duration
}

func NewFanout(sender Sender, dedup Deduper, logger *log.Logger, sendTimeout, dedupTTL time.Duration) *Fanout {
	if logger == nil {
		logger = log.Default()
	}
	if sendTimeout <= 0 {
		sendTimeout = 3 * time.Second
	}
	if dedupTTL <= 0 {
		dedupTTL = 24 * time.Hour
	}
	return &Fanout{sender: sender, dedup: dedup, logger: logger, sendTimeout: sendTimeout, dedupTTL: dedupTTL}
}

// Emit dispatches templateKey to every recipient, keyed by the transition so
// retried requests cannot double-fire. It returns without waiting for the
// sends; the originating state transition has already committed.
func (f *Fanout) Emit(negotiationID uuid.UUID, targetState string, recipients []Recipient, templateKey string, data map[string]any) {
	if f == nil || f.sender == nil || len(recipients) == 0 {
		return
	}

	key := "notify:" + negotiationID.String() + ":" + targetState
	if !f.claim(key) {
		f.logger.Printf("notify emit suppressed | key=%s template=%s", key, templateKey)
		return
	}

	// Detached from the request context: the transition is committed and
	// delivery must not be cancelled with it.
	go f.dispatch(recipients, templateKey, data)
}

// claim reserves the idempotency key. Dedup store trouble degrades to
// sending: losing a duplicate beats losing the notification.
func (f *Fanout) claim(key string) bool {
	if f.dedup == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.sendTimeout)
	defer cancel()

	ok, err := f.dedup.SetIfNotExists(ctx, key, "1", f.dedupTTL)
	if err != nil {
		f.logger.Printf("notify dedup unavailable | key=%s err=%v", key, err)
		return true
	}
	return ok
}

func (f *Fanout) dispatch(recipients []Recipient, templateKey string, data map[string]any) {
	for _, rec := range recipients {
		ctx, cancel := context.WithTimeout(context.Background(), f.sendTimeout)
		err := f.sender.Send(ctx, rec, templateKey, data)
		cancel()

		if err == nil {
			continue
		}
		if errors.Is(err, ErrRecipientNotFound) {
			f.logger.Printf("notify recipient missing | recipient=%s template=%s", rec.ID, templateKey)
			continue
		}
		f.logger.Printf("notify send failed | recipient=%s template=%s err=%v", rec.ID, templateKey, err)
	}
}
