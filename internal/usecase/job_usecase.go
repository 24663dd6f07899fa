package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type JobInput struct {
	Title          string
	Description    string
	Role           string
	Location       string
	EmploymentType string
	SalaryRange    string
	Requirements   []string
	Tags           []string
	ApplyByDate    *time.Time
}

// JobPatch holds optional updates; nil fields are left unchanged.
type JobPatch struct {
	Title          *string
	Description    *string
	Role           *string
	Location       *string
	EmploymentType *string
	SalaryRange    *string
	Requirements   []string
	Tags           []string
	Status         *job.Status
	ApplyByDate    *time.Time
}

type JobPage struct {
	Items    []job.Job `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

const EventJobsReordered = "jobs.reordered"

// JobOrder is one job's new rank after a reorder.
type JobOrder struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

type JobsReorderedEvent struct {
	Type      string     `json:"type"`
	Jobs      []JobOrder `json:"jobs"`
	Timestamp time.Time  `json:"timestamp"`
}

type JobUsecase interface {
	List(ctx context.Context, f job.ListFilter) (JobPage, error)
	Create(ctx context.Context, in JobInput) (job.Job, error)
	Get(ctx context.Context, id uuid.UUID) (job.Job, error)
	Update(ctx context.Context, id uuid.UUID, p JobPatch) (job.Job, error)
	SetStatus(ctx context.Context, id uuid.UUID, status job.Status) (job.Job, error)
	Reorder(ctx context.Context, id uuid.UUID, fromOrder, toOrder int) ([]job.Job, error)
	Board(ctx context.Context, id uuid.UUID) (board.Board, error)
}

type Jobs struct {
	jobs       job.Repository
	candidates candidate.Repository
	tracker    *board.Tracker
	cache      Cache
	events     Broadcaster
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewJobUsecase(jobs job.Repository, candidates candidate.Repository, tracker *board.Tracker, cache Cache, logger logrus.FieldLogger) *Jobs {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if tracker == nil {
		tracker = board.NewTracker()
	}
	return &Jobs{jobs: jobs, candidates: candidates, tracker: tracker, cache: cache, logger: logger, now: time.Now}
}

// WithEvents makes Reorder announce new ranks to connected dashboards.
func (u *Jobs) WithEvents(b Broadcaster) *Jobs {
	u.events = b
	return u
}

func (u *Jobs) List(ctx context.Context, f job.ListFilter) (JobPage, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = 10
	}
	fields := map[string]string{}
	if f.Page < 1 {
		fields["page"] = "Page must be at least 1"
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		fields["pageSize"] = "Page size must be between 1 and 100"
	}
	if f.Status != "" && !f.Status.Valid() {
		fields["status"] = "Status must be active or archived"
	}
	switch f.Sort {
	case "":
		f.Sort = job.SortOrder
	case job.SortOrder, job.SortTitle, job.SortCreatedAt:
	default:
		fields["sort"] = "Sort must be order, title or createdAt"
	}
	if len(fields) > 0 {
		return JobPage{}, newValidationError(fields)
	}

	key := JobsListCacheKey(f)
	if u.cache != nil {
		var cached JobPage
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			u.logger.WithField("key", key).Debug("jobs cache hit")
			return cached, nil
		}
	}

	items, total, err := u.jobs.List(ctx, f)
	if err != nil {
		u.logger.WithError(err).Error("list jobs")
		return JobPage{}, ErrInternal
	}
	out := JobPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, out, 0)
	}
	return out, nil
}

func (u *Jobs) Create(ctx context.Context, in JobInput) (job.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return job.Job{}, newValidationError(map[string]string{"title": "Title is required"})
	}

	slug, err := u.uniqueSlug(ctx, title, uuid.Nil)
	if err != nil {
		return job.Job{}, err
	}
	maxOrder, err := u.jobs.MaxOrder(ctx)
	if err != nil {
		u.logger.WithError(err).Error("job max order")
		return job.Job{}, ErrInternal
	}

	now := u.now().UTC()
	j := job.Job{
		ID:             uuid.New(),
		Title:          title,
		Slug:           slug,
		Description:    strings.TrimSpace(in.Description),
		Role:           strings.TrimSpace(in.Role),
		Location:       strings.TrimSpace(in.Location),
		EmploymentType: strings.TrimSpace(in.EmploymentType),
		SalaryRange:    strings.TrimSpace(in.SalaryRange),
		Requirements:   trimAll(in.Requirements),
		Tags:           job.NormalizeTags(in.Tags),
		Status:         job.StatusActive,
		Order:          maxOrder + 1,
		ApplyByDate:    in.ApplyByDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.jobs.Create(ctx, j); err != nil {
		if errors.Is(err, job.ErrSlugConflict) {
			return job.Job{}, newValidationError(map[string]string{"slug": "Slug already exists"})
		}
		u.logger.WithError(err).Error("create job")
		return job.Job{}, ErrInternal
	}
	u.invalidateList(ctx)
	u.logger.WithFields(logrus.Fields{"job_id": j.ID, "slug": j.Slug}).Info("job created")
	return j, nil
}

func (u *Jobs) Get(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, ErrInternal
	}
	return j, nil
}

func (u *Jobs) Update(ctx context.Context, id uuid.UUID, p JobPatch) (job.Job, error) {
	j, err := u.Get(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return job.Job{}, newValidationError(map[string]string{"title": "Title is required"})
		}
		if title != j.Title {
			slug, err := u.uniqueSlug(ctx, title, j.ID)
			if err != nil {
				return job.Job{}, err
			}
			j.Title, j.Slug = title, slug
		}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return job.Job{}, newValidationError(map[string]string{"status": "Status must be active or archived"})
		}
		j.Status = *p.Status
	}
	setTrimmed(&j.Description, p.Description)
	setTrimmed(&j.Role, p.Role)
	setTrimmed(&j.Location, p.Location)
	setTrimmed(&j.EmploymentType, p.EmploymentType)
	setTrimmed(&j.SalaryRange, p.SalaryRange)
	if p.Requirements != nil {
		j.Requirements = trimAll(p.Requirements)
	}
	if p.Tags != nil {
		j.Tags = job.NormalizeTags(p.Tags)
	}
	if p.ApplyByDate != nil {
		j.ApplyByDate = p.ApplyByDate
	}
	j.UpdatedAt = u.now().UTC()

	if err := u.jobs.Update(ctx, j); err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			return job.Job{}, ErrNotFound
		case errors.Is(err, job.ErrSlugConflict):
			return job.Job{}, newValidationError(map[string]string{"slug": "Slug already exists"})
		}
		u.logger.WithError(err).WithField("job_id", id).Error("update job")
		return job.Job{}, ErrInternal
	}
	u.invalidateList(ctx)
	return j, nil
}

func (u *Jobs) SetStatus(ctx context.Context, id uuid.UUID, status job.Status) (job.Job, error) {
	return u.Update(ctx, id, JobPatch{Status: &status})
}

// Reorder moves the job currently ranked fromOrder to toOrder and returns the
// jobs whose rank changed. A stale fromOrder is a validation error.
func (u *Jobs) Reorder(ctx context.Context, id uuid.UUID, fromOrder, toOrder int) ([]job.Job, error) {
	ordered, err := u.jobs.ListOrdered(ctx)
	if err != nil {
		u.logger.WithError(err).Error("list ordered jobs")
		return nil, ErrInternal
	}

	found := false
	for i := range ordered {
		ordered[i].Order = i + 1
		if ordered[i].ID == id {
			found = true
			if ordered[i].Order != fromOrder {
				return nil, newValidationError(map[string]string{"fromOrder": "Job is no longer at this position"})
			}
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	changed, ok := job.Reorder(ordered, fromOrder, toOrder)
	if !ok {
		return nil, newValidationError(map[string]string{"toOrder": "Position is out of range"})
	}
	if err := u.jobs.UpdateOrders(ctx, changed); err != nil {
		u.logger.WithError(err).Error("update job orders")
		return nil, ErrInternal
	}
	u.invalidateList(ctx)
	if u.events != nil && len(changed) > 0 {
		ev := JobsReorderedEvent{Type: EventJobsReordered, Jobs: make([]JobOrder, 0, len(changed)), Timestamp: u.now().UTC()}
		for _, j := range changed {
			ev.Jobs = append(ev.Jobs, JobOrder{ID: j.ID, Order: j.Order})
		}
		u.events.BroadcastJSON(ev)
	}
	u.logger.WithFields(logrus.Fields{"job_id": id, "from": fromOrder, "to": toOrder, "changed": len(changed)}).Info("jobs reordered")
	return changed, nil
}

func (u *Jobs) Board(ctx context.Context, id uuid.UUID) (board.Board, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return board.Board{}, err
	}
	cands, err := u.candidates.ListByJob(ctx, id)
	if err != nil {
		u.logger.WithError(err).WithField("job_id", id).Error("list job candidates")
		return board.Board{}, ErrInternal
	}
	return board.Build(id, cands, u.tracker), nil
}

func (u *Jobs) uniqueSlug(ctx context.Context, title string, exclude uuid.UUID) (string, error) {
	var lookupErr error
	slug := job.UniqueSlug(job.BaseSlug(title), func(s string) bool {
		if lookupErr != nil {
			return false
		}
		exists, err := u.jobs.SlugExists(ctx, s, exclude)
		if err != nil {
			lookupErr = err
			return false
		}
		return exists
	})
	if lookupErr != nil {
		u.logger.WithError(lookupErr).Error("slug lookup")
		return "", ErrInternal
	}
	return slug, nil
}

func (u *Jobs) invalidateList(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, jobsListKeyPattern); err != nil {
		u.logger.WithError(err).Warn("jobs cache invalidation")
	}
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
