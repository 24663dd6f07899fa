package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in-progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
)

var (
	ErrInvalidState    = errors.New("session is not accepting this action")
	ErrUnknownQuestion = errors.New("question does not exist in this assessment")
	ErrQuestionHidden  = errors.New("question is not currently visible")
)

const DefaultAutosaveDelay = time.Second

// Store persists drafts and final submissions. Completed responses have
// IsCompleted set.
type Store interface {
	Save(ctx context.Context, r assessment.Response) error
}

// Task is a unit of background persistence work.
type Task func(ctx context.Context) error

type Config struct {
	ID          string
	CandidateID uuid.UUID
	Assessment  *assessment.Assessment
	Store       Store
	Clock       Clock

	// AutosaveDelay is the debounce window between the last answer change
	// and the draft write.
	AutosaveDelay time.Duration

	// Enqueue hands autosave writes to a worker; when nil they run on their
	// own goroutine.
	Enqueue func(Task)

	// OnComplete is called once after a successful submission, outside the
	// session lock.
	OnComplete func(*Session)

	Logger logrus.FieldLogger
}

// Session is one candidate's attempt at an assessment. It moves through
// loading -> in-progress -> submitting -> completed; the countdown forces
// in-progress -> submitting when it runs out.
type Session struct {
	mu  sync.Mutex
	cfg Config

	engine  *assessment.Engine
	state   State
	answers assessment.Answers
	errors  map[string]string

	section int
	current string

	startedAt time.Time
	// carried carries the time spent in earlier attempts restored from a draft.
	carried   time.Duration
	deadline  time.Time
	countdown Timer
	saveTimer Timer

	result *assessment.Response
}

func New(cfg Config) (*Session, error) {
	if cfg.Assessment == nil {
		return nil, errors.New("session: nil assessment")
	}
	if cfg.Store == nil {
		return nil, errors.New("session: nil store")
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultAutosaveDelay
	}
	if cfg.Enqueue == nil {
		cfg.Enqueue = func(t Task) {
			go func() { _ = t(context.Background()) }()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Session{
		cfg:     cfg,
		engine:  assessment.NewEngine(cfg.Assessment),
		state:   StateLoading,
		answers: assessment.Answers{},
		errors:  map[string]string{},
		section: -1,
	}, nil
}

func (s *Session) ID() string {
	return s.cfg.ID
}

func (s *Session) CandidateID() uuid.UUID {
	return s.cfg.CandidateID
}

func (s *Session) AssessmentID() uuid.UUID {
	return s.cfg.Assessment.ID
}

func (s *Session) ResponseID() string {
	return assessment.ResponseID(s.cfg.CandidateID, s.cfg.Assessment.ID)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) log() logrus.FieldLogger {
	return s.cfg.Logger.WithFields(logrus.Fields{
		"session_id":    s.cfg.ID,
		"candidate_id":  s.cfg.CandidateID,
		"assessment_id": s.cfg.Assessment.ID,
	})
}

// Start leaves the loading state. A non-completed draft restores answers
// and the time already spent. When the time limit is already exhausted the
// draft is submitted straight away.
func (s *Session) Start(ctx context.Context, draft *assessment.Response) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return ErrInvalidState
	}

	if draft != nil && !draft.IsCompleted {
		for k, v := range draft.Responses {
			s.answers[k] = v
		}
		s.carried = time.Duration(draft.TimeSpent) * time.Second
	}

	now := s.cfg.Clock.Now()
	s.startedAt = now
	s.state = StateInProgress
	s.moveToFirstLocked()

	expired := false
	if limit := s.timeLimit(); limit > 0 {
		remaining := limit - s.carried
		if remaining <= 0 {
			expired = true
		} else {
			s.deadline = now.Add(remaining)
			s.countdown = s.cfg.Clock.AfterFunc(remaining, s.onTimeout)
		}
	}
	s.mu.Unlock()

	if expired {
		return s.Submit(ctx, true)
	}
	return nil
}

func (s *Session) timeLimit() time.Duration {
	return time.Duration(s.cfg.Assessment.Settings.TimeLimit) * time.Minute
}

func (s *Session) onTimeout() {
	s.log().Info("assessment time limit reached, auto-submitting")
	if err := s.Submit(context.Background(), true); err != nil && !errors.Is(err, ErrInvalidState) {
		s.log().WithError(err).Error("auto-submit failed")
	}
}

// Answer records value for questionID, clears answers of questions that the
// change hides and schedules a debounced draft save.
func (s *Session) Answer(questionID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrInvalidState
	}
	q, ok := s.engine.Question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if !s.engine.Visible(questionID, s.answers) {
		return ErrQuestionHidden
	}
	if err := assessment.ValidateAnswer(q, value); err != nil {
		s.errors[questionID] = err.Error()
		return assessment.NewValidationError(map[string]string{questionID: err.Error()})
	}

	if assessment.IsAnswered(value) {
		s.answers[questionID] = value
	} else {
		delete(s.answers, questionID)
	}
	delete(s.errors, questionID)

	for _, id := range s.engine.ClearDependents(questionID, s.answers) {
		delete(s.errors, id)
	}

	s.ensureCurrentVisibleLocked()
	s.scheduleSaveLocked()
	return nil
}

// Next advances to the following visible question. A required, unanswered
// current question blocks the move. The last question of a section leads
// to the first visible question of the next section that has one.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrInvalidState
	}
	if s.current == "" {
		return nil
	}

	q, _ := s.engine.Question(s.current)
	if q.Required && !assessment.IsAnswered(s.answers[q.ID]) {
		s.errors[q.ID] = assessment.RequiredMessage
		return assessment.NewValidationError(map[string]string{q.ID: assessment.RequiredMessage})
	}

	vis := s.engine.VisibleInSection(s.section, s.answers)
	if i := indexOf(vis, s.current); i >= 0 && i+1 < len(vis) {
		s.current = vis[i+1].ID
		return nil
	}
	for si := s.section + 1; si < len(s.cfg.Assessment.Sections); si++ {
		if v := s.engine.VisibleInSection(si, s.answers); len(v) > 0 {
			s.section = si
			s.current = v[0].ID
			return nil
		}
	}
	return nil
}

// Prev moves back without validating the current question.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrInvalidState
	}
	if s.current == "" {
		return nil
	}

	vis := s.engine.VisibleInSection(s.section, s.answers)
	if i := indexOf(vis, s.current); i > 0 {
		s.current = vis[i-1].ID
		return nil
	}
	for si := s.section - 1; si >= 0; si-- {
		if v := s.engine.VisibleInSection(si, s.answers); len(v) > 0 {
			s.section = si
			s.current = v[len(v)-1].ID
			return nil
		}
	}
	return nil
}

// Submit finalises the attempt. Unless force is set, every visible required
// question must be answered; otherwise the session stays in progress with
// per-question errors. A forced submit (time up) sends whatever is there.
func (s *Session) Submit(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.state = StateSubmitting

	if !force {
		errs := assessment.RequiredErrors(s.answers, s.engine.AllVisible(s.answers))
		if len(errs) > 0 {
			s.state = StateInProgress
			for k, v := range errs {
				s.errors[k] = v
			}
			s.mu.Unlock()
			return assessment.NewValidationError(errs)
		}
	}

	stopTimer(s.saveTimer)
	s.saveTimer = nil
	stopTimer(s.countdown)
	s.countdown = nil

	now := s.cfg.Clock.Now()
	resp := s.snapshotLocked(now)
	resp.Responses = s.visibleAnswersLocked()
	grade := s.engine.GradeAnswers(resp.Responses)
	submittedAt := now.UTC()
	resp.SubmittedAt = &submittedAt
	resp.IsCompleted = true
	resp.Score = grade.Score
	resp.MaxScore = grade.MaxScore
	resp.Passed = grade.Passed
	s.mu.Unlock()

	if err := s.cfg.Store.Save(ctx, resp); err != nil {
		if errors.Is(err, assessment.ErrResponseCompleted) {
			// submitted elsewhere; this attempt is over
			s.mu.Lock()
			s.state = StateCompleted
			s.errors = map[string]string{}
			s.mu.Unlock()
			s.log().Warn("response already completed, closing session")
			if s.cfg.OnComplete != nil {
				s.cfg.OnComplete(s)
			}
			return fmt.Errorf("submit assessment response: %w", ErrInvalidState)
		}

		s.mu.Lock()
		s.state = StateInProgress
		if force {
			// keep trying; the time is already up
			s.countdown = s.cfg.Clock.AfterFunc(s.cfg.AutosaveDelay, s.onTimeout)
		} else {
			if !s.deadline.IsZero() {
				s.countdown = s.cfg.Clock.AfterFunc(max(s.deadline.Sub(s.cfg.Clock.Now()), 0), s.onTimeout)
			}
			s.scheduleSaveLocked()
		}
		s.mu.Unlock()
		return fmt.Errorf("submit assessment response: %w", err)
	}

	s.mu.Lock()
	s.state = StateCompleted
	s.result = &resp
	s.errors = map[string]string{}
	s.mu.Unlock()

	s.log().WithFields(logrus.Fields{"forced": force, "score": resp.Score, "max_score": resp.MaxScore}).Info("assessment submitted")
	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete(s)
	}
	return nil
}

// Close stops the timers without submitting.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	stopTimer(s.saveTimer)
	stopTimer(s.countdown)
	s.saveTimer = nil
	s.countdown = nil
}

func (s *Session) scheduleSaveLocked() {
	stopTimer(s.saveTimer)
	s.saveTimer = s.cfg.Clock.AfterFunc(s.cfg.AutosaveDelay, s.flushDraft)
}

func (s *Session) flushDraft() {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	s.saveTimer = nil
	draft := s.snapshotLocked(s.cfg.Clock.Now())
	s.mu.Unlock()

	logger := s.log()
	store := s.cfg.Store
	s.cfg.Enqueue(func(ctx context.Context) error {
		if s.State() != StateInProgress {
			logger.Debug("autosave skipped, session no longer in progress")
			return nil
		}
		if err := store.Save(ctx, draft); err != nil {
			if errors.Is(err, assessment.ErrResponseCompleted) {
				logger.Debug("autosave skipped, response already completed")
				return nil
			}
			logger.WithError(err).Warn("autosave failed")
			return err
		}
		logger.Debug("autosave ok")
		return nil
	})
}

func (s *Session) snapshotLocked(now time.Time) assessment.Response {
	return assessment.Response{
		ID:           s.ResponseID(),
		CandidateID:  s.cfg.CandidateID,
		AssessmentID: s.cfg.Assessment.ID,
		JobID:        s.cfg.Assessment.JobID,
		Responses:    s.answers.Clone(),
		TimeSpent:    int(s.elapsedLocked(now) / time.Second),
		UpdatedAt:    now.UTC(),
	}
}

func (s *Session) visibleAnswersLocked() assessment.Answers {
	out := assessment.Answers{}
	for _, q := range s.engine.AllVisible(s.answers) {
		if v, ok := s.answers[q.ID]; ok {
			out[q.ID] = v
		}
	}
	return out
}

func (s *Session) elapsedLocked(now time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return s.carried
	}
	return s.carried + now.Sub(s.startedAt)
}

func (s *Session) moveToFirstLocked() {
	for si := range s.cfg.Assessment.Sections {
		if v := s.engine.VisibleInSection(si, s.answers); len(v) > 0 {
			s.section = si
			s.current = v[0].ID
			return
		}
	}
	s.section = -1
	s.current = ""
}

// ensureCurrentVisibleLocked keeps the cursor on a visible question after
// answers changed, preferring the next visible one.
func (s *Session) ensureCurrentVisibleLocked() {
	if s.current != "" && s.engine.Visible(s.current, s.answers) {
		return
	}
	all := s.cfg.Assessment.Questions()
	start := 0
	for i, q := range all {
		if q.ID == s.current {
			start = i
			break
		}
	}
	for i := start; i < len(all); i++ {
		if s.engine.Visible(all[i].ID, s.answers) {
			s.setCurrentLocked(all[i].ID)
			return
		}
	}
	for i := start - 1; i >= 0; i-- {
		if s.engine.Visible(all[i].ID, s.answers) {
			s.setCurrentLocked(all[i].ID)
			return
		}
	}
	s.moveToFirstLocked()
}

func (s *Session) setCurrentLocked(id string) {
	for si, sec := range s.cfg.Assessment.Sections {
		for _, q := range sec.Questions {
			if q.ID == id {
				s.section = si
				s.current = id
				return
			}
		}
	}
}

func indexOf(qs []assessment.Question, id string) int {
	for i, q := range qs {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func stopTimer(t Timer) {
	if t != nil {
		t.Stop()
	}
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
