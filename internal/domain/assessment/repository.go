package assessment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByJob(ctx context.Context, jobID uuid.UUID) (Assessment, error)
	GetByID(ctx context.Context, id uuid.UUID) (Assessment, error)
	// Save inserts or replaces the assessment attached to a.JobID.
	Save(ctx context.Context, a Assessment) error
}

type ResponseRepository interface {
	Get(ctx context.Context, id string) (Response, error)
	Save(ctx context.Context, r Response) error
	ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Response, error)
	CountCompleted(ctx context.Context) (completed int, passed int, err error)
}
