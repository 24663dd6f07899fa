package seeder

import (
	"context"

	"hireboard/internal/usecase"
)

// Target is what seeders write through. Going through the usecases keeps
// slugs, ordering and stage history identical to API-created data.
type Target struct {
	Auth        usecase.AuthUsecase
	Jobs        usecase.JobUsecase
	Candidates  usecase.CandidateUsecase
	Stages      usecase.StageUsecase
	Assessments usecase.AssessmentUsecase
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, t Target) error
}
