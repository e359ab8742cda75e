package usecase

import "errors"

// State-machine violations are returned to callers as typed failures and
// never coerced into a different transition. Each kind is distinguishable
// with errors.Is, not string matching.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrConsentRequired       = errors.New("candidate consent required")
	ErrNegotiationInProgress = errors.New("negotiation already in progress")
	ErrSlotInvalid           = errors.New("invalid slot set")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternal              = errors.New("internal error")
)
