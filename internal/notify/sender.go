package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Broadcaster is the slice of the websocket hub the sender needs.
type Broadcaster interface {
	Broadcast(channel string, message []byte)
}

// wireEvent is the side-channel payload shape.
type wireEvent struct {
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Role      string         `json:"role"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// HubSender delivers notifications over the websocket hub, keyed by
// recipient id so only that recipient's connections receive them.
type HubSender struct {
	hub Broadcaster
}

func NewHubSender(hub Broadcaster) *HubSender {
	return &HubSender{hub: hub}
}

func (s *HubSender) Send(_ context.Context, recipient Recipient, templateKey string, data map[string]any) error {
	if s == nil || s.hub == nil {
		return ErrRecipientNotFound
	}

	evt := wireEvent{
		Type:      templateKey,
		Recipient: recipient.ID.String(),
		Role:      recipient.Role,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	s.hub.Broadcast(recipient.ID.String(), b)
	return nil
}

// LogSender is the fallback transport when no hub is wired; it keeps the
// fanout observable in development and in tests.
type LogSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, recipient Recipient, templateKey string, data map[string]any) error {
	s.logger.Printf("notify send | recipient=%s role=%s template=%s data=%v", recipient.ID, recipient.Role, templateKey, data)
	return nil
}
