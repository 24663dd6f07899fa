package handler

import (
	"strings"

	"hireboard/internal/delivery/http/dto"
	"hireboard/internal/domain/job"
	"hireboard/internal/pkg/response"
	"hireboard/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc usecase.JobUsecase
}

func NewJobsHandler(uc usecase.JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Patch("/:id", h.Update)
	r.Patch("/:id/archive", h.Archive)
	r.Patch("/:id/unarchive", h.Unarchive)
	r.Patch("/:id/reorder", h.Reorder)
	r.Get("/:id/board", h.Board)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	page, err := parseQueryIntStrict(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := parseQueryIntStrict(c, "pageSize", 10)
	if err != nil {
		return err
	}

	out, err := h.uc.List(c.Context(), job.ListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   job.Status(strings.TrimSpace(c.Query("status"))),
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, out)
}

func (h *JobsHandler) Create(c fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	j, err := h.uc.Create(c.Context(), usecase.JobInput{
		Title:          req.Title,
		Description:    req.Description,
		Role:           req.Role,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryRange:    req.SalaryRange,
		Requirements:   req.Requirements,
		Tags:           req.Tags,
		ApplyByDate:    req.ApplyByDate,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, j)
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	j, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobsHandler) Update(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateJobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	patch := usecase.JobPatch{
		Title:          req.Title,
		Description:    req.Description,
		Role:           req.Role,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryRange:    req.SalaryRange,
		Requirements:   req.Requirements,
		Tags:           req.Tags,
		ApplyByDate:    req.ApplyByDate,
	}
	if req.Status != nil {
		st := job.Status(*req.Status)
		patch.Status = &st
	}

	j, err := h.uc.Update(c.Context(), id, patch)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobsHandler) Archive(c fiber.Ctx) error {
	return h.setStatus(c, job.StatusArchived)
}

func (h *JobsHandler) Unarchive(c fiber.Ctx) error {
	return h.setStatus(c, job.StatusActive)
}

func (h *JobsHandler) setStatus(c fiber.Ctx, status job.Status) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	j, err := h.uc.SetStatus(c.Context(), id, status)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, j)
}

func (h *JobsHandler) Reorder(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReorderJobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	changed, err := h.uc.Reorder(c.Context(), id, req.FromOrder, req.ToOrder)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, map[string]any{"jobs": changed})
}

func (h *JobsHandler) Board(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	b, err := h.uc.Board(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.OK(c, b)
}
