package handler

import (
	"errors"
	"strings"

	"hireboard/internal/delivery/http/dto"
	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/pkg/response"
	"hireboard/internal/session"
	"hireboard/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SessionHandler struct {
	uc usecase.SessionUsecase
}

func NewSessionHandler(uc usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// RegisterRoutes mounts the candidate-facing session endpoints on the API
// root; none of them require a recruiter token.
func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/assessments/:jobId/sessions", h.Start)
	r.Get("/sessions/:id", h.Get)
	r.Put("/sessions/:id/answers/:questionId", h.Answer)
	r.Post("/sessions/:id/next", h.Next)
	r.Post("/sessions/:id/prev", h.Prev)
	r.Post("/sessions/:id/submit", h.Submit)
}

func (h *SessionHandler) Start(c fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return err
	}
	var req dto.StartSessionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	v, err := h.uc.Start(c.Context(), jobID, req.CandidateID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, v)
}

func (h *SessionHandler) Get(c fiber.Ctx) error {
	v, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, v)
}

func (h *SessionHandler) Answer(c fiber.Ctx) error {
	qid := strings.TrimSpace(c.Params("questionId"))
	if qid == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid questionId", nil, nil)
	}
	var req dto.AnswerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	v, err := h.uc.Answer(c.Context(), c.Params("id"), qid, req.Value)
	return h.respond(c, v, err)
}

func (h *SessionHandler) Next(c fiber.Ctx) error {
	v, err := h.uc.Next(c.Context(), c.Params("id"))
	return h.respond(c, v, err)
}

func (h *SessionHandler) Prev(c fiber.Ctx) error {
	v, err := h.uc.Prev(c.Context(), c.Params("id"))
	return h.respond(c, v, err)
}

func (h *SessionHandler) Submit(c fiber.Ctx) error {
	v, err := h.uc.Submit(c.Context(), c.Params("id"))
	return h.respond(c, v, err)
}

// respond returns the session view alongside per-question validation
// errors so the form can render them in place.
func (h *SessionHandler) respond(c fiber.Ctx, v session.View, err error) error {
	if err == nil {
		return response.OK(c, v)
	}
	var verr *usecase.ValidationError
	if errors.As(err, &verr) && v.ID != "" {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Validation failed", map[string]any{
			"errors":  verr.Fields,
			"session": v,
		}, err)
	}
	return mapUsecaseError(err)
}
