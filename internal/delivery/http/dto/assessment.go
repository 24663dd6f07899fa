package dto

import (
	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
)

type SubmitResponseRequest struct {
	CandidateID uuid.UUID          `json:"candidateId" validate:"required"`
	Responses   assessment.Answers `json:"responses" validate:"required"`
	TimeSpent   int                `json:"timeSpent" validate:"gte=0"`
}

type StartSessionRequest struct {
	CandidateID uuid.UUID `json:"candidateId" validate:"required"`
}

// AnswerRequest carries the raw answer; null clears it.
type AnswerRequest struct {
	Value any `json:"value"`
}
