package memory

import (
	"context"
	"sort"
	"strings"

	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
)

type CandidateRepository struct {
	s *Store
}

func (r *CandidateRepository) Create(_ context.Context, c candidate.Candidate, initial candidate.HistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.candidates[c.ID] = c
	r.s.history[c.ID] = append(r.s.history[c.ID], initial)
	return nil
}

func (r *CandidateRepository) GetByID(_ context.Context, id uuid.UUID) (candidate.Candidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.candidates[id]
	if !ok {
		return candidate.Candidate{}, candidate.ErrNotFound
	}
	return c, nil
}

func (r *CandidateRepository) List(_ context.Context, f candidate.ListFilter) ([]candidate.Candidate, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]candidate.Candidate, 0, len(r.s.candidates))
	for _, c := range r.s.candidates {
		if f.Stage != "" && c.Stage != f.Stage {
			continue
		}
		if f.JobID != nil && c.JobID != *f.JobID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		matched = append(matched, c)
	}
	sort.SliceStable(matched, func(a, b int) bool {
		if !matched[a].CreatedAt.Equal(matched[b].CreatedAt) {
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
		return matched[a].ID.String() < matched[b].ID.String()
	})
	return page(matched, f.Page, f.PageSize), len(matched), nil
}

func (r *CandidateRepository) ListByJob(_ context.Context, jobID uuid.UUID) ([]candidate.Candidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]candidate.Candidate, 0)
	for _, c := range r.s.candidates {
		if c.JobID == jobID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}

func (r *CandidateRepository) UpdateContact(_ context.Context, c candidate.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.candidates[c.ID]
	if !ok {
		return candidate.ErrNotFound
	}
	cur.Name, cur.Email, cur.Phone, cur.UpdatedAt = c.Name, c.Email, c.Phone, c.UpdatedAt
	r.s.candidates[c.ID] = cur
	return nil
}

func (r *CandidateRepository) CountByStage(_ context.Context) (map[candidate.Stage]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[candidate.Stage]int, 6)
	for _, s := range candidate.AllStages() {
		out[s] = 0
	}
	for _, c := range r.s.candidates {
		out[c.Stage]++
	}
	return out, nil
}

func (r *CandidateRepository) ApplyStageChange(_ context.Context, entry candidate.HistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.candidates[entry.CandidateID]
	if !ok {
		return candidate.ErrNotFound
	}
	if entry.FromStage == nil || c.Stage != *entry.FromStage {
		return candidate.ErrStageConflict
	}
	c.Stage = entry.ToStage
	c.UpdatedAt = entry.Timestamp
	r.s.candidates[c.ID] = c
	r.s.history[c.ID] = append(r.s.history[c.ID], entry)
	return nil
}

type HistoryRepository struct {
	s *Store
}

func (r *HistoryRepository) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]candidate.HistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.history[candidateID]
	out := make([]candidate.HistoryEntry, len(src))
	copy(out, src)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Timestamp.Before(out[b].Timestamp) })
	return out, nil
}

type NoteRepository struct {
	s *Store
}

func (r *NoteRepository) Create(_ context.Context, n candidate.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.candidates[n.CandidateID]; !ok {
		return candidate.ErrNotFound
	}
	n.Mentions = cloneStrings(n.Mentions)
	r.s.notes[n.CandidateID] = append(r.s.notes[n.CandidateID], n)
	return nil
}

func (r *NoteRepository) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]candidate.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.notes[candidateID]
	out := make([]candidate.Note, len(src))
	copy(out, src)
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
