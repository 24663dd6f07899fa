// Package memory holds map-backed repositories used by tests and by the
// server when STORE_DRIVER=memory. All repositories returned by one Store
// share a single lock so cross-collection writes stay consistent.
package memory

import (
	"sync"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/domain/user"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users       map[uuid.UUID]user.User
	jobs        map[uuid.UUID]job.Job
	candidates  map[uuid.UUID]candidate.Candidate
	history     map[uuid.UUID][]candidate.HistoryEntry
	notes       map[uuid.UUID][]candidate.Note
	assessments map[uuid.UUID]assessment.Assessment
	responses   map[string]assessment.Response
}

func NewStore() *Store {
	return &Store{
		users:       map[uuid.UUID]user.User{},
		jobs:        map[uuid.UUID]job.Job{},
		candidates:  map[uuid.UUID]candidate.Candidate{},
		history:     map[uuid.UUID][]candidate.HistoryEntry{},
		notes:       map[uuid.UUID][]candidate.Note{},
		assessments: map[uuid.UUID]assessment.Assessment{},
		responses:   map[string]assessment.Response{},
	}
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Jobs() *JobRepository               { return &JobRepository{s: s} }
func (s *Store) Candidates() *CandidateRepository   { return &CandidateRepository{s: s} }
func (s *Store) History() *HistoryRepository        { return &HistoryRepository{s: s} }
func (s *Store) Notes() *NoteRepository             { return &NoteRepository{s: s} }
func (s *Store) Assessments() *AssessmentRepository { return &AssessmentRepository{s: s} }
func (s *Store) Responses() *ResponseRepository     { return &ResponseRepository{s: s} }

func page[T any](items []T, pageNum, pageSize int) []T {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
