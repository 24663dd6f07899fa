package memory

import (
	"context"
	"encoding/json"
	"sort"

	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
)

type AssessmentRepository struct {
	s *Store
}

// deepCopy goes through JSON so stored assessments share no slices or
// pointers with callers, matching what a database round-trip yields.
func deepCopy[T any](in T) (T, error) {
	var out T
	b, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

func (r *AssessmentRepository) GetByJob(_ context.Context, jobID uuid.UUID) (assessment.Assessment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.assessments {
		if a.JobID == jobID {
			return deepCopy(a)
		}
	}
	return assessment.Assessment{}, assessment.ErrNotFound
}

func (r *AssessmentRepository) GetByID(_ context.Context, id uuid.UUID) (assessment.Assessment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assessments[id]
	if !ok {
		return assessment.Assessment{}, assessment.ErrNotFound
	}
	return deepCopy(a)
}

func (r *AssessmentRepository) Save(_ context.Context, a assessment.Assessment) error {
	cp, err := deepCopy(a)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.assessments {
		if existing.JobID == a.JobID && id != a.ID {
			delete(r.s.assessments, id)
			cp.ID = id
			cp.CreatedAt = existing.CreatedAt
		}
	}
	r.s.assessments[cp.ID] = cp
	return nil
}

type ResponseRepository struct {
	s *Store
}

func (r *ResponseRepository) Get(_ context.Context, id string) (assessment.Response, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	resp, ok := r.s.responses[id]
	if !ok {
		return assessment.Response{}, assessment.ErrResponseNotFound
	}
	return deepCopy(resp)
}

func (r *ResponseRepository) Save(_ context.Context, resp assessment.Response) error {
	cp, err := deepCopy(resp)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if prev, ok := r.s.responses[cp.ID]; ok && prev.IsCompleted {
		return assessment.ErrResponseCompleted
	}
	r.s.responses[cp.ID] = cp
	return nil
}

func (r *ResponseRepository) ListByAssessment(_ context.Context, assessmentID uuid.UUID) ([]assessment.Response, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]assessment.Response, 0)
	for _, resp := range r.s.responses {
		if resp.AssessmentID == assessmentID {
			cp, err := deepCopy(resp)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].UpdatedAt.After(out[b].UpdatedAt) })
	return out, nil
}

func (r *ResponseRepository) CountCompleted(_ context.Context) (int, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	completed, passed := 0, 0
	for _, resp := range r.s.responses {
		if !resp.IsCompleted {
			continue
		}
		completed++
		if resp.Passed {
			passed++
		}
	}
	return completed, passed, nil
}
