package usecase

import (
	"context"
	"errors"
	"time"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SubmitInput struct {
	CandidateID uuid.UUID
	Responses   assessment.Answers
	TimeSpent   int
}

type AssessmentUsecase interface {
	Get(ctx context.Context, jobID uuid.UUID) (assessment.Assessment, error)
	Save(ctx context.Context, jobID uuid.UUID, a assessment.Assessment) (assessment.Assessment, error)
	Submit(ctx context.Context, jobID uuid.UUID, in SubmitInput) (assessment.Response, error)
	Responses(ctx context.Context, jobID uuid.UUID) ([]assessment.Response, error)
}

// LiveSessions reports whether an assessment session is running for a
// response.
type LiveSessions interface {
	Active(responseID string) bool
}

type Assessments struct {
	assessments assessment.Repository
	responses   assessment.ResponseRepository
	jobs        job.Repository
	candidates  candidate.Repository
	cache       Cache
	sessions    LiveSessions
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewAssessmentUsecase(
	assessments assessment.Repository,
	responses assessment.ResponseRepository,
	jobs job.Repository,
	candidates candidate.Repository,
	cache Cache,
	logger logrus.FieldLogger,
) *Assessments {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Assessments{
		assessments: assessments,
		responses:   responses,
		jobs:        jobs,
		candidates:  candidates,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// WithSessions makes Submit refuse responses that a live session owns.
func (u *Assessments) WithSessions(s LiveSessions) *Assessments {
	u.sessions = s
	return u
}

func (u *Assessments) Get(ctx context.Context, jobID uuid.UUID) (assessment.Assessment, error) {
	key := AssessmentCacheKey(jobID)
	if u.cache != nil {
		var cached assessment.Assessment
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	a, err := u.assessments.GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, assessment.ErrNotFound) {
			return assessment.Assessment{}, ErrNotFound
		}
		u.logger.WithError(err).WithField("job_id", jobID).Error("load assessment")
		return assessment.Assessment{}, ErrInternal
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, a, 0)
	}
	return a, nil
}

// Save normalizes and validates the builder payload and stores it as the
// job's only assessment.
func (u *Assessments) Save(ctx context.Context, jobID uuid.UUID, a assessment.Assessment) (assessment.Assessment, error) {
	if _, err := u.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return assessment.Assessment{}, ErrNotFound
		}
		return assessment.Assessment{}, ErrInternal
	}

	a.JobID = jobID
	a.Normalize()
	if err := a.Validate(); err != nil {
		var ve *assessment.ValidationError
		if errors.As(err, &ve) {
			return assessment.Assessment{}, newValidationError(ve.Fields)
		}
		return assessment.Assessment{}, ErrInvalidInput
	}

	now := u.now().UTC()
	existing, err := u.assessments.GetByJob(ctx, jobID)
	switch {
	case err == nil:
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	case errors.Is(err, assessment.ErrNotFound):
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = now
	default:
		u.logger.WithError(err).WithField("job_id", jobID).Error("load assessment")
		return assessment.Assessment{}, ErrInternal
	}
	a.UpdatedAt = now

	if err := u.assessments.Save(ctx, a); err != nil {
		u.logger.WithError(err).WithField("job_id", jobID).Error("save assessment")
		return assessment.Assessment{}, ErrInternal
	}
	if u.cache != nil {
		_ = u.cache.Delete(ctx, AssessmentCacheKey(jobID))
	}
	u.logger.WithFields(logrus.Fields{
		"job_id":        jobID,
		"assessment_id": a.ID,
		"questions":     len(a.Questions()),
	}).Info("assessment saved")
	return a, nil
}

// Submit stores a complete response in one call. Answers to hidden questions
// are dropped; visible answers are validated and required questions checked.
func (u *Assessments) Submit(ctx context.Context, jobID uuid.UUID, in SubmitInput) (assessment.Response, error) {
	a, err := u.Get(ctx, jobID)
	if err != nil {
		return assessment.Response{}, err
	}
	if _, err := u.candidates.GetByID(ctx, in.CandidateID); err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return assessment.Response{}, newValidationError(map[string]string{"candidateId": "Candidate does not exist"})
		}
		return assessment.Response{}, ErrInternal
	}
	if in.TimeSpent < 0 {
		return assessment.Response{}, newValidationError(map[string]string{"timeSpent": "Time spent cannot be negative"})
	}

	responseID := assessment.ResponseID(in.CandidateID, a.ID)
	if u.sessions != nil && u.sessions.Active(responseID) {
		return assessment.Response{}, ErrSessionState
	}
	prev, err := u.responses.Get(ctx, responseID)
	switch {
	case err == nil:
		if prev.IsCompleted {
			return assessment.Response{}, ErrSessionState
		}
	case errors.Is(err, assessment.ErrResponseNotFound):
	default:
		u.logger.WithError(err).WithField("response_id", responseID).Error("load response")
		return assessment.Response{}, ErrInternal
	}

	engine := assessment.NewEngine(&a)
	visible := engine.AllVisible(in.Responses)
	kept := assessment.Answers{}
	fields := map[string]string{}
	for _, q := range visible {
		v, ok := in.Responses[q.ID]
		if !ok || !assessment.IsAnswered(v) {
			continue
		}
		if err := assessment.ValidateAnswer(q, v); err != nil {
			fields[q.ID] = err.Error()
			continue
		}
		kept[q.ID] = v
	}
	for id, msg := range assessment.RequiredErrors(kept, visible) {
		if _, dup := fields[id]; !dup {
			fields[id] = msg
		}
	}
	if len(fields) > 0 {
		return assessment.Response{}, newValidationError(fields)
	}

	grade := engine.GradeAnswers(kept)
	now := u.now().UTC()
	resp := assessment.Response{
		ID:           responseID,
		CandidateID:  in.CandidateID,
		AssessmentID: a.ID,
		JobID:        jobID,
		Responses:    kept,
		SubmittedAt:  &now,
		IsCompleted:  true,
		TimeSpent:    in.TimeSpent,
		Score:        grade.Score,
		MaxScore:     grade.MaxScore,
		Passed:       grade.Passed,
		UpdatedAt:    now,
	}
	if err := u.responses.Save(ctx, resp); err != nil {
		if errors.Is(err, assessment.ErrResponseCompleted) {
			return assessment.Response{}, ErrSessionState
		}
		u.logger.WithError(err).WithField("response_id", resp.ID).Error("save response")
		return assessment.Response{}, ErrInternal
	}
	return resp, nil
}

func (u *Assessments) Responses(ctx context.Context, jobID uuid.UUID) ([]assessment.Response, error) {
	a, err := u.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out, err := u.responses.ListByAssessment(ctx, a.ID)
	if err != nil {
		u.logger.WithError(err).WithField("assessment_id", a.ID).Error("list responses")
		return nil, ErrInternal
	}
	return out, nil
}
