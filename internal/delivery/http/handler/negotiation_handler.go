package handler

import (
	"context"
	"errors"
	"log"
	"strings"

	"talent-bridge/internal/delivery/http/dto"
	"talent-bridge/internal/delivery/http/middleware"
	"talent-bridge/internal/domain/negotiation"
	"talent-bridge/internal/pkg/response"
	"talent-bridge/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// queueInvalidator drops a client's cached action queue after a transition
// so the next dashboard read reflects it.
type queueInvalidator interface {
	InvalidateActionQueue(ctx context.Context, clientID string) error
}

type NegotiationHandler struct {
	negotiations usecase.NegotiationUsecase
	cache        queueInvalidator
	logger       *log.Logger
}

func NewNegotiationHandler(negotiations usecase.NegotiationUsecase, cache queueInvalidator, logger *log.Logger) *NegotiationHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &NegotiationHandler{negotiations: negotiations, cache: cache, logger: logger}
}

func (h *NegotiationHandler) Propose(c fiber.Ctx) error {
	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid submission id", nil, err)
	}

	var req dto.ProposeNegotiationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	neg, err := h.negotiations.Propose(c.Context(), usecase.ProposeInput{
		SubmissionID: submissionID,
		Slots:        req.Slots,
		Message:      req.Message,
	})
	if err != nil {
		return mapNegotiationUsecaseError(err)
	}

	h.invalidateQueue(c.Context())
	return response.Success(c, fiber.StatusCreated, "negotiation proposed", negotiationToDTO(neg))
}

func (h *NegotiationHandler) ConfirmOptIn(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid negotiation id", nil, err)
	}

	var req dto.ConfirmOptInRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Slot.IsZero() {
		return middleware.NewAppError(fiber.StatusBadRequest, "Slot required", nil, nil)
	}

	neg, contact, err := h.negotiations.ConfirmOptIn(c.Context(), id, req.Slot)
	if err != nil {
		return mapNegotiationUsecaseError(err)
	}

	out := dto.ConfirmOptInResponse{Negotiation: negotiationToDTO(neg)}
	if contact != nil {
		out.Contact = &dto.CandidateContactResponse{
			FullName: contact.FullName,
			Email:    contact.Email,
			Phone:    contact.Phone,
		}
	}

	h.invalidateQueue(c.Context())
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *NegotiationHandler) Cancel(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid negotiation id", nil, err)
	}

	var req dto.CancelNegotiationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	neg, err := h.negotiations.Cancel(c.Context(), id, req.Reason, req.NotifyParties)
	if err != nil {
		return mapNegotiationUsecaseError(err)
	}

	h.invalidateQueue(c.Context())
	return response.Success(c, fiber.StatusOK, response.MessageOK, negotiationToDTO(neg))
}

func (h *NegotiationHandler) ReportNoShow(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid negotiation id", nil, err)
	}

	var req dto.ReportNoShowRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	party := negotiation.NoShowParty(strings.TrimSpace(req.Party))
	neg, err := h.negotiations.ReportNoShow(c.Context(), id, party)
	if err != nil {
		return mapNegotiationUsecaseError(err)
	}

	h.invalidateQueue(c.Context())
	return response.Success(c, fiber.StatusOK, response.MessageOK, negotiationToDTO(neg))
}

func (h *NegotiationHandler) Complete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid negotiation id", nil, err)
	}

	neg, err := h.negotiations.Complete(c.Context(), id)
	if err != nil {
		return mapNegotiationUsecaseError(err)
	}

	h.invalidateQueue(c.Context())
	return response.Success(c, fiber.StatusOK, response.MessageOK, negotiationToDTO(neg))
}

func (h *NegotiationHandler) invalidateQueue(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateActionQueue(ctx, "*"); err != nil {
		h.logger.Printf("action queue invalidate status=error err=%v", err)
	}
}

func negotiationToDTO(neg *negotiation.Negotiation) dto.NegotiationResponse {
	out := dto.NegotiationResponse{
		ID:                 neg.ID,
		SubmissionID:       neg.SubmissionID,
		Status:             string(neg.Status),
		ProposedSlots:      neg.ProposedSlots,
		SelectedSlot:       neg.SelectedSlot,
		ClientMessage:      neg.ClientMessage,
		CandidateConsent:   neg.CandidateConsent,
		CancellationReason: neg.CancellationReason,
		CreatedAt:          neg.CreatedAt,
		UpdatedAt:          neg.UpdatedAt,
		CompletedAt:        neg.CompletedAt,
	}
	if neg.NoShowParty != nil {
		party := string(*neg.NoShowParty)
		out.NoShowParty = &party
	}
	return out
}

func mapNegotiationUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Negotiation not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrSlotInvalid):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid interview slots", nil, err)
	case errors.Is(err, usecase.ErrNegotiationInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "Negotiation already in progress", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid negotiation state", nil, err)
	case errors.Is(err, usecase.ErrConsentRequired):
		return middleware.NewAppError(fiber.StatusForbidden, "Candidate consent required", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
