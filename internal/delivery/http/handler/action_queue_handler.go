package handler

import (
	"errors"
	"strconv"

	"talent-bridge/internal/delivery/http/dto"
	"talent-bridge/internal/delivery/http/middleware"
	"talent-bridge/internal/pkg/response"
	"talent-bridge/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ActionQueueHandler struct {
	queue usecase.ActionQueueUsecase
}

func NewActionQueueHandler(queue usecase.ActionQueueUsecase) *ActionQueueHandler {
	return &ActionQueueHandler{queue: queue}
}

func (h *ActionQueueHandler) GetQueue(c fiber.Ctx) error {
	clientID, ok := c.Locals(middleware.CtxActorIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	dashboard := false
	if v := c.Query("dashboard"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid dashboard flag", nil, err)
		}
		dashboard = parsed
	}

	queue, err := h.queue.GetQueue(c.Context(), clientID, dashboard)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	out := dto.ActionQueueResponse{
		Items:       make([]dto.ActionQueueItemResponse, 0, len(queue.Items)),
		HealthScore: queue.HealthScore,
		GeneratedAt: queue.GeneratedAt,
	}
	for _, it := range queue.Items {
		out.Items = append(out.Items, dto.ActionQueueItemResponse{
			SubmissionID:   it.SubmissionID,
			NegotiationID:  it.NegotiationID,
			ActionType:     string(it.ActionType),
			CandidateLabel: it.CandidateLabel,
			Tier:           string(it.Tier),
			WaitingHours:   it.WaitingHours,
			CreatedAt:      it.CreatedAt,
		})
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
