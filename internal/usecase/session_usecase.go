package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/session"
	"hireboard/internal/worker"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"
)

const completedSessionRetention = 15 * time.Minute

type SessionUsecase interface {
	Start(ctx context.Context, jobID, candidateID uuid.UUID) (session.View, error)
	Get(ctx context.Context, id string) (session.View, error)
	Answer(ctx context.Context, id, questionID string, value any) (session.View, error)
	Next(ctx context.Context, id string) (session.View, error)
	Prev(ctx context.Context, id string) (session.View, error)
	Submit(ctx context.Context, id string) (session.View, error)
}

type SessionOptions struct {
	AutosaveDelay time.Duration
	Clock         session.Clock
	Pool          *worker.Pool
}

// Sessions keeps the live assessment attempts, at most one per candidate and
// assessment. Completed sessions stay readable for a while after submission.
type Sessions struct {
	assessments assessment.Repository
	responses   assessment.ResponseRepository
	candidates  candidate.Repository
	opts        SessionOptions
	logger      logrus.FieldLogger

	mu     sync.Mutex
	byID   map[string]*session.Session
	active map[string]string
}

func NewSessionUsecase(
	assessments assessment.Repository,
	responses assessment.ResponseRepository,
	candidates candidate.Repository,
	opts SessionOptions,
	logger logrus.FieldLogger,
) *Sessions {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = session.RealClock()
	}
	return &Sessions{
		assessments: assessments,
		responses:   responses,
		candidates:  candidates,
		opts:        opts,
		logger:      logger,
		byID:        map[string]*session.Session{},
		active:      map[string]string{},
	}
}

func (u *Sessions) Start(ctx context.Context, jobID, candidateID uuid.UUID) (session.View, error) {
	a, err := u.assessments.GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, assessment.ErrNotFound) {
			return session.View{}, ErrNotFound
		}
		return session.View{}, ErrInternal
	}
	if _, err := u.candidates.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return session.View{}, newValidationError(map[string]string{"candidateId": "Candidate does not exist"})
		}
		return session.View{}, ErrInternal
	}

	responseID := assessment.ResponseID(candidateID, a.ID)

	u.mu.Lock()
	if id, ok := u.active[responseID]; ok {
		s := u.byID[id]
		u.mu.Unlock()
		return s.View(), nil
	}
	u.mu.Unlock()

	var draft *assessment.Response
	prev, err := u.responses.Get(ctx, responseID)
	switch {
	case err == nil:
		if prev.IsCompleted {
			return session.View{}, ErrSessionState
		}
		draft = &prev
	case errors.Is(err, assessment.ErrResponseNotFound):
	default:
		u.logger.WithError(err).WithField("response_id", responseID).Error("load draft")
		return session.View{}, ErrInternal
	}

	id, err := gonanoid.New()
	if err != nil {
		return session.View{}, ErrInternal
	}
	log := u.logger.WithFields(logrus.Fields{"session_id": id, "response_id": responseID})

	s, err := session.New(session.Config{
		ID:            id,
		CandidateID:   candidateID,
		Assessment:    &a,
		Store:         u.responses,
		Clock:         u.opts.Clock,
		AutosaveDelay: u.opts.AutosaveDelay,
		Enqueue:       u.enqueue(log),
		OnComplete:    u.completed,
		Logger:        log,
	})
	if err != nil {
		return session.View{}, ErrInternal
	}

	u.mu.Lock()
	if existing, ok := u.active[responseID]; ok {
		other := u.byID[existing]
		u.mu.Unlock()
		return other.View(), nil
	}
	u.byID[id] = s
	u.active[responseID] = id
	u.mu.Unlock()

	if err := s.Start(ctx, draft); err != nil {
		log.WithError(err).Warn("session start")
		if s.State() != session.StateCompleted {
			u.drop(s)
			return session.View{}, ErrInternal
		}
	}
	log.Info("assessment session started")
	return s.View(), nil
}

func (u *Sessions) Get(_ context.Context, id string) (session.View, error) {
	s, err := u.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	return s.View(), nil
}

func (u *Sessions) Answer(_ context.Context, id, questionID string, value any) (session.View, error) {
	s, err := u.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	if err := s.Answer(questionID, value); err != nil {
		return s.View(), mapSessionError(err)
	}
	return s.View(), nil
}

func (u *Sessions) Next(_ context.Context, id string) (session.View, error) {
	s, err := u.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	if err := s.Next(); err != nil {
		return s.View(), mapSessionError(err)
	}
	return s.View(), nil
}

func (u *Sessions) Prev(_ context.Context, id string) (session.View, error) {
	s, err := u.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	if err := s.Prev(); err != nil {
		return s.View(), mapSessionError(err)
	}
	return s.View(), nil
}

func (u *Sessions) Submit(ctx context.Context, id string) (session.View, error) {
	s, err := u.lookup(id)
	if err != nil {
		return session.View{}, err
	}
	if err := s.Submit(ctx, false); err != nil {
		return s.View(), mapSessionError(err)
	}
	return s.View(), nil
}

// Close stops every live session's timers without submitting. Drafts already
// queued on the pool are still written.
func (u *Sessions) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, s := range u.byID {
		s.Close()
	}
}

func (u *Sessions) lookup(id string) (*session.Session, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (u *Sessions) enqueue(log logrus.FieldLogger) func(session.Task) {
	if u.opts.Pool == nil {
		return nil
	}
	return func(t session.Task) {
		if err := u.opts.Pool.Submit(worker.Task(t)); err != nil {
			log.WithError(err).Warn("autosave dropped")
		}
	}
}

// Active reports whether an unfinished session holds responseID.
func (u *Sessions) Active(responseID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.active[responseID]
	return ok
}

func (u *Sessions) completed(s *session.Session) {
	u.mu.Lock()
	if u.active[s.ResponseID()] == s.ID() {
		delete(u.active, s.ResponseID())
	}
	u.mu.Unlock()
	u.opts.Clock.AfterFunc(completedSessionRetention, func() { u.drop(s) })
}

func (u *Sessions) drop(s *session.Session) {
	s.Close()
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.byID, s.ID())
	if u.active[s.ResponseID()] == s.ID() {
		delete(u.active, s.ResponseID())
	}
}

func mapSessionError(err error) error {
	var ve *assessment.ValidationError
	switch {
	case errors.As(err, &ve):
		return newValidationError(ve.Fields)
	case errors.Is(err, session.ErrInvalidState):
		return ErrSessionState
	case errors.Is(err, session.ErrUnknownQuestion):
		return ErrNotFound
	case errors.Is(err, session.ErrQuestionHidden):
		return newValidationError(map[string]string{"questionId": "Question is not currently visible"})
	}
	return ErrInternal
}
