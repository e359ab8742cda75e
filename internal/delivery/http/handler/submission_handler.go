package handler

import (
	"errors"
	"strings"

	"talent-bridge/internal/delivery/http/dto"
	"talent-bridge/internal/delivery/http/middleware"
	"talent-bridge/internal/domain/submission"
	"talent-bridge/internal/pkg/response"
	"talent-bridge/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	submissions usecase.SubmissionUsecase
	pipeline    usecase.PipelineUsecase
}

func NewSubmissionHandler(submissions usecase.SubmissionUsecase, pipeline usecase.PipelineUsecase) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, pipeline: pipeline}
}

func (h *SubmissionHandler) Create(c fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	jobID, err := uuid.Parse(strings.TrimSpace(req.JobID))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job_id", nil, err)
	}
	candidateID, err := uuid.Parse(strings.TrimSpace(req.CandidateID))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid candidate_id", nil, err)
	}
	recruiterID, err := uuid.Parse(strings.TrimSpace(req.RecruiterID))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid recruiter_id", nil, err)
	}
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid client_id", nil, err)
	}

	sub, err := h.submissions.Create(c.Context(), usecase.CreateSubmissionInput{
		JobID:             jobID,
		JobTitle:          req.JobTitle,
		CandidateID:       candidateID,
		RecruiterID:       recruiterID,
		ClientID:          clientID,
		MatchScore:        req.MatchScore,
		CandidateFullName: req.CandidateFullName,
		CandidateEmail:    req.CandidateEmail,
		CandidatePhone:    req.CandidatePhone,
	})
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "submission created", dto.SubmissionResponse{
		ID:             sub.ID,
		JobID:          sub.JobID,
		Stage:          string(sub.Stage),
		Status:         string(sub.Status),
		MatchScore:     sub.MatchScore,
		CreatedAt:      sub.CreatedAt,
		StageEnteredAt: sub.StageEnteredAt,
	})
}

func (h *SubmissionHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid submission id", nil, err)
	}

	view, err := h.submissions.GetClientView(c.Context(), id)
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	out := dto.SubmissionViewResponse{
		ID:               view.ID,
		JobID:            view.JobID,
		JobTitle:         view.JobTitle,
		Stage:            string(view.Stage),
		Status:           string(view.Status),
		MatchScore:       view.MatchScore,
		IdentityRevealed: view.IdentityRevealed,
		CandidateLabel:   view.CandidateLabel,
		CreatedAt:        view.CreatedAt,
		StageEnteredAt:   view.StageEnteredAt,
	}
	if view.Contact != nil {
		out.Contact = &dto.CandidateContactResponse{
			FullName: view.Contact.FullName,
			Email:    view.Contact.Email,
			Phone:    view.Contact.Phone,
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *SubmissionHandler) Advance(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid submission id", nil, err)
	}

	var req dto.AdvanceSubmissionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in := usecase.AdvanceInput{SubmissionID: id}
	if role, ok := c.Locals(middleware.CtxRoleKey).(string); ok {
		in.ActorRole = role
	}
	if s := strings.TrimSpace(req.Stage); s != "" {
		stage := submission.Stage(s)
		if !stage.Valid() {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid stage", nil, nil)
		}
		in.ExplicitStage = &stage
	}

	sub, err := h.pipeline.Advance(c.Context(), in)
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SubmissionResponse{
		ID:             sub.ID,
		JobID:          sub.JobID,
		Stage:          string(sub.Stage),
		Status:         string(sub.Status),
		MatchScore:     sub.MatchScore,
		CreatedAt:      sub.CreatedAt,
		StageEnteredAt: sub.StageEnteredAt,
	})
}

func (h *SubmissionHandler) Reject(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid submission id", nil, err)
	}

	var req dto.RejectSubmissionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if strings.TrimSpace(req.Category) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Rejection category required", nil, nil)
	}

	sub, err := h.pipeline.Reject(c.Context(), id, req.Category, req.Reason)
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SubmissionResponse{
		ID:             sub.ID,
		JobID:          sub.JobID,
		Stage:          string(sub.Stage),
		Status:         string(sub.Status),
		MatchScore:     sub.MatchScore,
		CreatedAt:      sub.CreatedAt,
		StageEnteredAt: sub.StageEnteredAt,
	})
}

func mapSubmissionUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Submission not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid stage transition", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
