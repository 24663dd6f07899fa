package handler

import (
	"strings"

	"hireboard/internal/delivery/http/dto"
	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/pkg/response"
	"hireboard/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CandidateHandler struct {
	candidates usecase.CandidateUsecase
	stages     usecase.StageUsecase
}

func NewCandidateHandler(candidates usecase.CandidateUsecase, stages usecase.StageUsecase) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, stages: stages}
}

func (h *CandidateHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Patch("/:id/stage", h.ChangeStage)
	r.Get("/:id/timeline", h.Timeline)
	r.Get("/:id/notes", h.Notes)
	r.Post("/:id/notes", h.AddNote)
}

func (h *CandidateHandler) List(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 10)
	if err != nil {
		return err
	}

	f := candidate.ListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("stage")); raw != "" {
		st, err := candidate.ParseStage(raw)
		if err != nil {
			return middleware.ValidationFailed(map[string]string{"stage": "Unknown stage"})
		}
		f.Stage = st
	}
	if raw := strings.TrimSpace(c.Query("jobId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid jobId", nil, err)
		}
		f.JobID = &id
	}

	out, err := h.candidates.List(c.Context(), f)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, out)
}

func (h *CandidateHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCandidateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cand, err := h.candidates.Create(c.Context(), usecase.CandidateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		JobID: req.JobID,
	}, middleware.Author(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, cand)
}

func (h *CandidateHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	cand, err := h.candidates.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, cand)
}

func (h *CandidateHandler) Update(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCandidateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cand, err := h.candidates.Update(c.Context(), id, usecase.CandidatePatch{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, cand)
}

// ChangeStage moves the candidate on the pipeline. The stage may be given as
// key or label.
func (h *CandidateHandler) ChangeStage(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeStageRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	target, err := candidate.ParseStage(req.Stage)
	if err != nil {
		return middleware.ValidationFailed(map[string]string{"stage": "Unknown stage"})
	}

	res, err := h.stages.ChangeStage(c.Context(), id, target, middleware.Author(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, res)
}

func (h *CandidateHandler) Timeline(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	items, err := h.candidates.Timeline(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, items)
}

func (h *CandidateHandler) Notes(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	notes, err := h.candidates.Notes(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, notes)
}

func (h *CandidateHandler) AddNote(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateNoteRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	n, err := h.candidates.AddNote(c.Context(), id, req.Content, middleware.Author(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, n)
}
