package notify

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type captureSender struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	done  chan struct{}
}

func newCaptureSender(expect int) *captureSender {
	return &captureSender{done: make(chan struct{}, expect)}
}

func (s *captureSender) Send(_ context.Context, rec Recipient, templateKey string, _ map[string]any) error {
	s.mu.Lock()
	s.calls = append(s.calls, rec.Role+":"+templateKey)
	err := s.errs[rec.Role]
	s.mu.Unlock()
	s.done <- struct{}{}
	return err
}

func (s *captureSender) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for send %d of %d", i+1, n)
		}
	}
}

type memDedup struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (d *memDedup) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys == nil {
		d.keys = map[string]bool{}
	}
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestFanout_EmitsToEveryRecipient(t *testing.T) {
	sender := newCaptureSender(2)
	f := NewFanout(sender, &memDedup{}, quietLogger(), time.Second, time.Minute)

	recipients := []Recipient{
		{ID: uuid.New(), Role: "client"},
		{ID: uuid.New(), Role: "recruiter"},
	}
	f.Emit(uuid.New(), "cancelled", recipients, "negotiation_cancelled", nil)

	sender.wait(t, 2)
	if len(sender.calls) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sender.calls))
	}
}

func TestFanout_SuppressesRetriedTransition(t *testing.T) {
	sender := newCaptureSender(2)
	f := NewFanout(sender, &memDedup{}, quietLogger(), time.Second, time.Minute)

	negID := uuid.New()
	rec := []Recipient{{ID: uuid.New(), Role: "recruiter"}}

	f.Emit(negID, "pending_opt_in", rec, "interview_proposed", nil)
	f.Emit(negID, "pending_opt_in", rec, "interview_proposed", nil)

	sender.wait(t, 1)
	// Give a duplicate dispatch a chance to show up before asserting.
	select {
	case <-sender.done:
		t.Fatalf("retried transition fanned out twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFanout_DistinctStatesAreNotSuppressed(t *testing.T) {
	sender := newCaptureSender(2)
	f := NewFanout(sender, &memDedup{}, quietLogger(), time.Second, time.Minute)

	negID := uuid.New()
	rec := []Recipient{{ID: uuid.New(), Role: "recruiter"}}

	f.Emit(negID, "pending_opt_in", rec, "interview_proposed", nil)
	f.Emit(negID, "scheduled", rec, "interview_scheduled", nil)

	sender.wait(t, 2)
}

func TestFanout_DedupFailureDegradesToSending(t *testing.T) {
	sender := newCaptureSender(1)
	f := NewFanout(sender, &memDedup{err: errors.New("redis down")}, quietLogger(), time.Second, time.Minute)

	f.Emit(uuid.New(), "scheduled", []Recipient{{ID: uuid.New(), Role: "client"}}, "interview_scheduled", nil)

	sender.wait(t, 1)
}

func TestFanout_SenderErrorsAreSwallowed(t *testing.T) {
	sender := newCaptureSender(2)
	sender.errs = map[string]error{"client": ErrRecipientNotFound, "recruiter": errors.New("boom")}
	f := NewFanout(sender, &memDedup{}, quietLogger(), time.Second, time.Minute)

	f.Emit(uuid.New(), "cancelled", []Recipient{
		{ID: uuid.New(), Role: "client"},
		{ID: uuid.New(), Role: "recruiter"},
	}, "negotiation_cancelled", nil)

	// Both recipients are attempted even though both sends fail.
	sender.wait(t, 2)
}
