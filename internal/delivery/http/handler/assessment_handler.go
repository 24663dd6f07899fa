package handler

import (
	"hireboard/internal/delivery/http/dto"
	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/domain/assessment"
	"hireboard/internal/pkg/response"
	"hireboard/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AssessmentHandler struct {
	uc usecase.AssessmentUsecase
}

func NewAssessmentHandler(uc usecase.AssessmentUsecase) *AssessmentHandler {
	return &AssessmentHandler{uc: uc}
}

// RegisterRoutes mounts the recruiter-side builder endpoints.
func (h *AssessmentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:jobId", h.Get)
	r.Put("/:jobId", h.Save)
	r.Get("/:jobId/responses", h.Responses)
}

// RegisterPublicRoutes mounts the candidate-side direct submit.
func (h *AssessmentHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/:jobId/submit", h.Submit)
}

func (h *AssessmentHandler) Get(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return err
	}
	a, err := h.uc.Get(c.Context(), jobID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, a)
}

func (h *AssessmentHandler) Save(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return err
	}
	var a assessment.Assessment
	if err := c.Bind().Body(&a); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	saved, err := h.uc.Save(c.Context(), jobID, a)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, saved)
}

func (h *AssessmentHandler) Submit(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return err
	}
	var req dto.SubmitResponseRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	resp, err := h.uc.Submit(c.Context(), jobID, usecase.SubmitInput{
		CandidateID: req.CandidateID,
		Responses:   req.Responses,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, resp)
}

func (h *AssessmentHandler) Responses(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return err
	}
	out, err := h.uc.Responses(c.Context(), jobID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, out)
}
