package candidate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("candidate not found")
	ErrInvalidStage  = errors.New("invalid stage")
	ErrStageConflict = errors.New("candidate stage changed concurrently")
)

type Candidate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	JobID     uuid.UUID `json:"jobId"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry is an append-only audit record of one stage transition.
// FromStage is nil for the entry written when the candidate applies.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidateId"`
	FromStage   *Stage    `json:"fromStage"`
	ToStage     Stage     `json:"toStage"`
	Author      string    `json:"author"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

const ApplicationReceived = "Application received"

func NewApplicationEntry(candidateID uuid.UUID, author string, at time.Time) HistoryEntry {
	return HistoryEntry{
		ID:          uuid.New(),
		CandidateID: candidateID,
		ToStage:     StageApplied,
		Author:      author,
		Timestamp:   at.UTC(),
		Description: ApplicationReceived,
	}
}

func NewTransitionEntry(candidateID uuid.UUID, from, to Stage, author string, at time.Time) HistoryEntry {
	f := from
	return HistoryEntry{
		ID:          uuid.New(),
		CandidateID: candidateID,
		FromStage:   &f,
		ToStage:     to,
		Author:      author,
		Timestamp:   at.UTC(),
		Description: TransitionDescription(from, to),
	}
}
