package downstream

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// The offer-desk and placement-ledger subsystems live outside this service.
// These hooks only record that the handoff point was reached; swapping in a
// real client is a wiring change in the container.

type LogOfferOpener struct {
	logger *log.Logger
}

func NewLogOfferOpener(logger *log.Logger) *LogOfferOpener {
	if logger == nil {
		logger = log.Default()
	}
	return &LogOfferOpener{logger: logger}
}

func (o *LogOfferOpener) OpenOffer(_ context.Context, submissionID uuid.UUID) error {
	o.logger.Printf("offer opened submission=%s", submissionID)
	return nil
}

type LogPlacementRecorder struct {
	logger *log.Logger
}

func NewLogPlacementRecorder(logger *log.Logger) *LogPlacementRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPlacementRecorder{logger: logger}
}

func (r *LogPlacementRecorder) RecordPlacement(_ context.Context, submissionID uuid.UUID) error {
	r.logger.Printf("placement recorded submission=%s", submissionID)
	return nil
}
