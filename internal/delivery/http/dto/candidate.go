package dto

import "github.com/google/uuid"

type CreateCandidateRequest struct {
	Name  string    `json:"name" validate:"required,max=200"`
	Email string    `json:"email" validate:"required,email"`
	Phone string    `json:"phone" validate:"max=40"`
	JobID uuid.UUID `json:"jobId" validate:"required"`
}

type UpdateCandidateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=40"`
}

type ChangeStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}
