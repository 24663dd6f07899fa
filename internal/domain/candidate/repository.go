package candidate

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Search   string
	Stage    Stage
	JobID    *uuid.UUID
	Page     int
	PageSize int
}

type Repository interface {
	Create(ctx context.Context, c Candidate, initial HistoryEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (Candidate, error)
	List(ctx context.Context, f ListFilter) ([]Candidate, int, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]Candidate, error)
	UpdateContact(ctx context.Context, c Candidate) error
	CountByStage(ctx context.Context) (map[Stage]int, error)

	// ApplyStageChange moves the candidate from entry.FromStage to
	// entry.ToStage and appends entry atomically. It returns ErrStageConflict
	// when the stored stage is no longer entry.FromStage.
	ApplyStageChange(ctx context.Context, entry HistoryEntry) error
}

type HistoryRepository interface {
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]HistoryEntry, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n Note) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Note, error)
}
