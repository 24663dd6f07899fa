package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/domain/timeline"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CandidateInput struct {
	Name  string
	Email string
	Phone string
	JobID uuid.UUID
}

type CandidatePatch struct {
	Name  *string
	Email *string
	Phone *string
}

type CandidatePage struct {
	Items    []candidate.Candidate `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

type CandidateUsecase interface {
	List(ctx context.Context, f candidate.ListFilter) (CandidatePage, error)
	Create(ctx context.Context, in CandidateInput, author string) (candidate.Candidate, error)
	Get(ctx context.Context, id uuid.UUID) (candidate.Candidate, error)
	Update(ctx context.Context, id uuid.UUID, p CandidatePatch) (candidate.Candidate, error)
	Timeline(ctx context.Context, id uuid.UUID) ([]timeline.Item, error)
	Notes(ctx context.Context, id uuid.UUID) ([]candidate.Note, error)
	AddNote(ctx context.Context, id uuid.UUID, content, author string) (candidate.Note, error)
}

type Candidates struct {
	candidates candidate.Repository
	history    candidate.HistoryRepository
	notes      candidate.NoteRepository
	jobs       job.Repository
	tracker    *board.Tracker
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewCandidateUsecase(
	candidates candidate.Repository,
	history candidate.HistoryRepository,
	notes candidate.NoteRepository,
	jobs job.Repository,
	tracker *board.Tracker,
	logger logrus.FieldLogger,
) *Candidates {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if tracker == nil {
		tracker = board.NewTracker()
	}
	return &Candidates{
		candidates: candidates,
		history:    history,
		notes:      notes,
		jobs:       jobs,
		tracker:    tracker,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *Candidates) List(ctx context.Context, f candidate.ListFilter) (CandidatePage, error) {
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
	if f.Stage != "" && !f.Stage.Valid() {
		fields["stage"] = "Unknown stage"
	}
	if len(fields) > 0 {
		return CandidatePage{}, newValidationError(fields)
	}

	items, total, err := u.candidates.List(ctx, f)
	if err != nil {
		u.logger.WithError(err).Error("list candidates")
		return CandidatePage{}, ErrInternal
	}
	return CandidatePage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (u *Candidates) Create(ctx context.Context, in CandidateInput, author string) (candidate.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "Name is required"
	}
	if msg := checkEmail(email); msg != "" {
		fields["email"] = msg
	}
	if in.JobID == uuid.Nil {
		fields["jobId"] = "Job is required"
	}
	if len(fields) > 0 {
		return candidate.Candidate{}, newValidationError(fields)
	}

	if _, err := u.jobs.GetByID(ctx, in.JobID); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return candidate.Candidate{}, newValidationError(map[string]string{"jobId": "Job does not exist"})
		}
		return candidate.Candidate{}, ErrInternal
	}

	now := u.now().UTC()
	c := candidate.Candidate{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(email),
		Phone:     strings.TrimSpace(in.Phone),
		JobID:     in.JobID,
		Stage:     candidate.StageApplied,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.candidates.Create(ctx, c, candidate.NewApplicationEntry(c.ID, author, now)); err != nil {
		u.logger.WithError(err).Error("create candidate")
		return candidate.Candidate{}, ErrInternal
	}
	u.logger.WithFields(logrus.Fields{"candidate_id": c.ID, "job_id": c.JobID}).Info("candidate created")
	return c, nil
}

func (u *Candidates) Get(ctx context.Context, id uuid.UUID) (candidate.Candidate, error) {
	c, err := u.candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return candidate.Candidate{}, ErrNotFound
		}
		return candidate.Candidate{}, ErrInternal
	}
	return c, nil
}

func (u *Candidates) Update(ctx context.Context, id uuid.UUID, p CandidatePatch) (candidate.Candidate, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return candidate.Candidate{}, err
	}

	fields := map[string]string{}
	if p.Name != nil {
		if n := strings.TrimSpace(*p.Name); n == "" {
			fields["name"] = "Name is required"
		} else {
			c.Name = n
		}
	}
	if p.Email != nil {
		e := strings.TrimSpace(*p.Email)
		if msg := checkEmail(e); msg != "" {
			fields["email"] = msg
		} else {
			c.Email = strings.ToLower(e)
		}
	}
	if p.Phone != nil {
		c.Phone = strings.TrimSpace(*p.Phone)
	}
	if len(fields) > 0 {
		return candidate.Candidate{}, newValidationError(fields)
	}

	c.UpdatedAt = u.now().UTC()
	if err := u.candidates.UpdateContact(ctx, c); err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return candidate.Candidate{}, ErrNotFound
		}
		u.logger.WithError(err).WithField("candidate_id", id).Error("update candidate")
		return candidate.Candidate{}, ErrInternal
	}
	return c, nil
}

// Timeline returns history and notes oldest first, plus a provisional item
// while a stage move for the candidate is in flight.
func (u *Candidates) Timeline(ctx context.Context, id uuid.UUID) ([]timeline.Item, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	var pending *board.Transition
	if tr, ok := u.tracker.Pending(id); ok {
		pending = &tr
	}
	return buildTimeline(ctx, u.history, u.notes, id, pending)
}

func buildTimeline(ctx context.Context, history candidate.HistoryRepository, notes candidate.NoteRepository, id uuid.UUID, pending *board.Transition) ([]timeline.Item, error) {
	h, err := history.ListByCandidate(ctx, id)
	if err != nil {
		return nil, ErrInternal
	}
	var n []candidate.Note
	if notes != nil {
		n, err = notes.ListByCandidate(ctx, id)
		if err != nil {
			return nil, ErrInternal
		}
	}
	return timeline.Build(h, n, pending), nil
}

func (u *Candidates) Notes(ctx context.Context, id uuid.UUID) ([]candidate.Note, error) {
	if _, err := u.Get(ctx, id); err != nil {
		return nil, err
	}
	out, err := u.notes.ListByCandidate(ctx, id)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Candidates) AddNote(ctx context.Context, id uuid.UUID, content, author string) (candidate.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return candidate.Note{}, newValidationError(map[string]string{"content": "Note cannot be empty"})
	}
	if _, err := u.Get(ctx, id); err != nil {
		return candidate.Note{}, err
	}

	n := candidate.Note{
		ID:          uuid.New(),
		CandidateID: id,
		Content:     content,
		Author:      author,
		Mentions:    candidate.ParseMentions(content),
		CreatedAt:   u.now().UTC(),
	}
	if err := u.notes.Create(ctx, n); err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return candidate.Note{}, ErrNotFound
		}
		u.logger.WithError(err).WithField("candidate_id", id).Error("create note")
		return candidate.Note{}, ErrInternal
	}
	return n, nil
}

var fieldValidator = validator.New()

func checkEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return "Email is invalid"
	}
	return ""
}
