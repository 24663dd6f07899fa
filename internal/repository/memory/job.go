package memory

import (
	"context"
	"sort"
	"strings"

	"hireboard/internal/domain/job"

	"github.com/google/uuid"
)

type JobRepository struct {
	s *Store
}

func copyJob(j job.Job) job.Job {
	j.Requirements = cloneStrings(j.Requirements)
	j.Tags = cloneStrings(j.Tags)
	return j
}

func (r *JobRepository) Create(_ context.Context, j job.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.jobs {
		if existing.Slug == j.Slug {
			return job.ErrSlugConflict
		}
	}
	r.s.jobs[j.ID] = copyJob(j)
	return nil
}

func (r *JobRepository) Update(_ context.Context, j job.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[j.ID]; !ok {
		return job.ErrNotFound
	}
	for id, existing := range r.s.jobs {
		if id != j.ID && existing.Slug == j.Slug {
			return job.ErrSlugConflict
		}
	}
	r.s.jobs[j.ID] = copyJob(j)
	return nil
}

func (r *JobRepository) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return copyJob(j), nil
}

func (r *JobRepository) List(_ context.Context, f job.ListFilter) ([]job.Job, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]job.Job, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if search != "" && !jobMatches(j, search) {
			continue
		}
		matched = append(matched, copyJob(j))
	}

	sortJobs(matched, f.Sort)
	return page(matched, f.Page, f.PageSize), len(matched), nil
}

func jobMatches(j job.Job, search string) bool {
	if strings.Contains(strings.ToLower(j.Title), search) {
		return true
	}
	for _, t := range j.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}

func sortJobs(jobs []job.Job, by string) {
	sort.SliceStable(jobs, func(a, b int) bool {
		x, y := jobs[a], jobs[b]
		switch by {
		case job.SortTitle:
			if !strings.EqualFold(x.Title, y.Title) {
				return strings.ToLower(x.Title) < strings.ToLower(y.Title)
			}
		case job.SortCreatedAt:
			if !x.CreatedAt.Equal(y.CreatedAt) {
				return x.CreatedAt.After(y.CreatedAt)
			}
		default:
			if x.Order != y.Order {
				return x.Order < y.Order
			}
		}
		return x.ID.String() < y.ID.String()
	})
}

func (r *JobRepository) ListOrdered(_ context.Context) ([]job.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]job.Job, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		out = append(out, copyJob(j))
	}
	sortJobs(out, job.SortOrder)
	return out, nil
}

func (r *JobRepository) UpdateOrders(_ context.Context, jobs []job.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range jobs {
		if _, ok := r.s.jobs[j.ID]; !ok {
			return job.ErrNotFound
		}
	}
	for _, j := range jobs {
		cur := r.s.jobs[j.ID]
		cur.Order = j.Order
		r.s.jobs[j.ID] = cur
	}
	return nil
}

func (r *JobRepository) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, j := range r.s.jobs {
		if id != exclude && j.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *JobRepository) MaxOrder(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, j := range r.s.jobs {
		if j.Order > n {
			n = j.Order
		}
	}
	return n, nil
}

func (r *JobRepository) CountByStatus(_ context.Context) (map[job.Status]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[job.Status]int{job.StatusActive: 0, job.StatusArchived: 0}
	for _, j := range r.s.jobs {
		out[j.Status]++
	}
	return out, nil
}
