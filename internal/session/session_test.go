package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	due := make([]*fakeTimer, 0)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

type memStore struct {
	mu    sync.Mutex
	saved []assessment.Response
	err   error
}

func (m *memStore) Save(_ context.Context, r assessment.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, prev := range m.saved {
		if prev.ID == r.ID && prev.IsCompleted {
			return assessment.ErrResponseCompleted
		}
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memStore) all() []assessment.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]assessment.Response(nil), m.saved...)
}

func testAssessment(timeLimit int) *assessment.Assessment {
	return &assessment.Assessment{
		ID:    uuid.New(),
		JobID: uuid.New(),
		Title: "Screening",
		Sections: []assessment.Section{
			{ID: "s1", Title: "Basics", Questions: []assessment.Question{
				{ID: "q1", Type: assessment.TypeSingleChoice, Title: "Used Go?", Options: []string{"Yes", "No"}, Required: true, CorrectAnswer: "Yes"},
				{ID: "q2", Type: assessment.TypeShortText, Title: "Which version?", Required: true,
					ConditionalLogic: &assessment.ConditionalLogic{Enabled: true, TriggerQuestion: "q1", TriggerValue: "Yes"}},
				{ID: "q3", Type: assessment.TypeShortText, Title: "Why that one?",
					ConditionalLogic: &assessment.ConditionalLogic{Enabled: true, TriggerQuestion: "q2", TriggerValue: "1.22"}},
			}},
			{ID: "s2", Title: "Empty when hidden", Questions: []assessment.Question{
				{ID: "q4", Type: assessment.TypeLongText, Title: "Tell us more",
					ConditionalLogic: &assessment.ConditionalLogic{Enabled: true, TriggerQuestion: "q1", TriggerValue: "Yes"}},
			}},
			{ID: "s3", Title: "Wrap up", Questions: []assessment.Question{
				{ID: "q5", Type: assessment.TypeNumeric, Title: "Years", Required: true},
			}},
		},
		Settings: assessment.Settings{TimeLimit: timeLimit, PassingScore: 50},
	}
}

func newTestSession(t *testing.T, a *assessment.Assessment) (*Session, *fakeClock, *memStore) {
	t.Helper()
	clock := newFakeClock()
	store := &memStore{}
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s, err := New(Config{
		ID:            "sess-1",
		CandidateID:   uuid.New(),
		Assessment:    a,
		Store:         store,
		Clock:         clock,
		AutosaveDelay: time.Second,
		Enqueue:       func(task Task) { _ = task(context.Background()) },
		Logger:        logger,
	})
	require.NoError(t, err)
	return s, clock, store
}

func TestSession_StartPositionsOnFirstQuestion(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	assert.Equal(t, StateLoading, s.State())

	require.NoError(t, s.Start(context.Background(), nil))
	v := s.View()
	assert.Equal(t, StateInProgress, v.State)
	require.NotNil(t, v.Question)
	assert.Equal(t, "q1", v.Question.ID)
	assert.Equal(t, 0, v.Section.Index)
	assert.Nil(t, v.TimeLeft)
	assert.Equal(t, Progress{Answered: 0, Total: 2, Percent: 0, QuestionNumber: 1}, v.Progress)
	assert.True(t, v.IsFirst)

	assert.ErrorIs(t, s.Start(context.Background(), nil), ErrInvalidState)
}

func TestSession_NextBlockedOnRequired(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	err := s.Next()
	var verr *assessment.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "q1")
	assert.Equal(t, "q1", s.View().Question.ID)
	assert.Equal(t, assessment.RequiredMessage, s.View().Errors["q1"])

	require.NoError(t, s.Answer("q1", "Yes"))
	assert.Empty(t, s.View().Errors)
	require.NoError(t, s.Next())
	assert.Equal(t, "q2", s.View().Question.ID)
}

func TestSession_SectionNavigationSkipsHiddenSections(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	require.NoError(t, s.Answer("q1", "No"))
	require.NoError(t, s.Next())

	v := s.View()
	assert.Equal(t, "q5", v.Question.ID, "section 2 has no visible questions")
	assert.Equal(t, 2, v.Section.Index)
	assert.True(t, v.IsLast)

	require.NoError(t, s.Prev())
	assert.Equal(t, "q1", s.View().Question.ID)
}

func TestSession_LastQuestionOfSectionMovesToNextSection(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	require.NoError(t, s.Answer("q1", "Yes"))
	require.NoError(t, s.Next())
	require.NoError(t, s.Answer("q2", "1.21"))
	require.NoError(t, s.Next())

	v := s.View()
	assert.Equal(t, "q4", v.Question.ID)
	assert.Equal(t, 1, v.Section.Index)
	assert.Equal(t, 4, v.Progress.Total)
	assert.Equal(t, 3, v.Progress.QuestionNumber)
	assert.Equal(t, 50, v.Progress.Percent)

	require.NoError(t, s.Prev())
	assert.Equal(t, "q2", s.View().Question.ID)
}

func TestSession_AnswerChangeClearsDependents(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	require.NoError(t, s.Answer("q1", "Yes"))
	require.NoError(t, s.Answer("q2", "1.22"))
	require.NoError(t, s.Answer("q3", "generics"))
	require.NoError(t, s.Answer("q4", "more"))

	require.NoError(t, s.Answer("q1", "No"))
	answers := s.View().Answers
	assert.Equal(t, assessment.Answers{"q1": "No"}, answers)

	assert.ErrorIs(t, s.Answer("q2", "1.22"), ErrQuestionHidden)
	assert.ErrorIs(t, s.Answer("zz", "x"), ErrUnknownQuestion)
}

func TestSession_CursorLeavesHiddenQuestion(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "Yes"))
	require.NoError(t, s.Next())
	require.Equal(t, "q2", s.View().Question.ID)

	// hiding the current question moves the cursor forward
	require.NoError(t, s.Answer("q1", "No"))
	assert.Equal(t, "q5", s.View().Question.ID)
}

func TestSession_InvalidAnswerIsRejected(t *testing.T) {
	s, _, store := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	var verr *assessment.ValidationError
	require.ErrorAs(t, s.Answer("q1", "Maybe"), &verr)
	assert.NotContains(t, s.View().Answers, "q1")
	assert.Contains(t, s.View().Errors, "q1")
	assert.Empty(t, store.all())
}

func TestSession_AutosaveIsDebounced(t *testing.T) {
	s, clock, store := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))

	require.NoError(t, s.Answer("q1", "Yes"))
	clock.Advance(600 * time.Millisecond)
	require.NoError(t, s.Answer("q2", "1.21"))
	clock.Advance(600 * time.Millisecond)
	assert.Empty(t, store.all(), "second change restarts the debounce window")

	clock.Advance(500 * time.Millisecond)
	saved := store.all()
	require.Len(t, saved, 1)
	assert.False(t, saved[0].IsCompleted)
	assert.Equal(t, assessment.Answers{"q1": "Yes", "q2": "1.21"}, saved[0].Responses)
	assert.Equal(t, s.ResponseID(), saved[0].ID)
	assert.Equal(t, 1, saved[0].TimeSpent)
}

func TestSession_SubmitValidatesVisibleRequired(t *testing.T) {
	s, clock, store := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "Yes"))

	err := s.Submit(context.Background(), false)
	var verr *assessment.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"q2", "q5"}, sortedKeys(verr.Fields))
	assert.Equal(t, StateInProgress, s.State())

	require.NoError(t, s.Answer("q1", "No"))
	require.NoError(t, s.Answer("q5", float64(3)))
	clock.Advance(10 * time.Second)
	require.NoError(t, s.Submit(context.Background(), false))

	assert.Equal(t, StateCompleted, s.State())
	saved := store.all()
	final := saved[len(saved)-1]
	assert.True(t, final.IsCompleted)
	require.NotNil(t, final.SubmittedAt)
	assert.Equal(t, assessment.Answers{"q1": "No", "q5": float64(3)}, final.Responses)
	assert.Equal(t, 1, final.MaxScore)
	assert.Equal(t, 0, final.Score)

	assert.ErrorIs(t, s.Answer("q5", float64(4)), ErrInvalidState)
	assert.ErrorIs(t, s.Submit(context.Background(), false), ErrInvalidState)
	require.NotNil(t, s.View().Result)
}

func TestSession_TimeUpAutoSubmitsIgnoringRequired(t *testing.T) {
	s, clock, store := newTestSession(t, testAssessment(1))
	completed := make(chan struct{}, 1)
	s.cfg.OnComplete = func(*Session) { completed <- struct{}{} }

	require.NoError(t, s.Start(context.Background(), nil))
	v := s.View()
	require.NotNil(t, v.TimeLeft)
	assert.Equal(t, 60, *v.TimeLeft)

	clock.Advance(30 * time.Second)
	assert.Equal(t, 30, *s.View().TimeLeft)

	clock.Advance(30 * time.Second)
	assert.Equal(t, StateCompleted, s.State())
	saved := store.all()
	require.NotEmpty(t, saved)
	final := saved[len(saved)-1]
	assert.True(t, final.IsCompleted)
	assert.Equal(t, 60, final.TimeSpent)
	assert.Empty(t, final.Responses)

	select {
	case <-completed:
	default:
		t.Fatalf("expected OnComplete to run")
	}
}

func TestSession_ForcedSubmitRetriesOnFailure(t *testing.T) {
	s, clock, store := newTestSession(t, testAssessment(1))
	require.NoError(t, s.Start(context.Background(), nil))

	store.err = errors.New("db down")
	clock.Advance(time.Minute)
	assert.Equal(t, StateInProgress, s.State())

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	clock.Advance(time.Second)
	assert.Equal(t, StateCompleted, s.State())
}

func TestSession_SubmitFailureRollsBackToInProgress(t *testing.T) {
	s, _, store := newTestSession(t, testAssessment(0))
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "No"))
	require.NoError(t, s.Answer("q5", float64(1)))

	store.err = errors.New("db down")
	err := s.Submit(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, StateInProgress, s.State())
	assert.Equal(t, "No", s.View().Answers["q1"])
}

func TestSession_FailedSubmitKeepsCountdown(t *testing.T) {
	s, clock, store := newTestSession(t, testAssessment(1))
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "No"))
	require.NoError(t, s.Answer("q5", float64(3)))

	store.mu.Lock()
	store.err = errors.New("db down")
	store.mu.Unlock()
	require.Error(t, s.Submit(context.Background(), false))
	assert.Equal(t, StateInProgress, s.State())

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	clock.Advance(5 * time.Minute)

	assert.Equal(t, StateCompleted, s.State())
	saved := store.all()
	require.NotEmpty(t, saved)
	final := saved[len(saved)-1]
	assert.True(t, final.IsCompleted)
	assert.Equal(t, "No", final.Responses["q1"])
}

func TestSession_QueuedDraftDoesNotOverwriteSubmission(t *testing.T) {
	clock := newFakeClock()
	store := &memStore{}
	logger, _ := test.NewNullLogger()
	var queued []Task

	s, err := New(Config{
		ID:            "sess-queued",
		CandidateID:   uuid.New(),
		Assessment:    testAssessment(0),
		Store:         store,
		Clock:         clock,
		AutosaveDelay: time.Second,
		Enqueue:       func(task Task) { queued = append(queued, task) },
		Logger:        logger,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "No"))

	clock.Advance(2 * time.Second)
	require.Len(t, queued, 1)

	require.NoError(t, s.Submit(context.Background(), true))
	for _, task := range queued {
		require.NoError(t, task(context.Background()))
	}

	saved := store.all()
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsCompleted)
	assert.Equal(t, StateCompleted, s.State())
}

func TestSession_SubmitAfterExternalCompletionCloses(t *testing.T) {
	s, _, store := newTestSession(t, testAssessment(1))
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Answer("q1", "No"))
	require.NoError(t, s.Answer("q5", float64(2)))

	store.mu.Lock()
	store.saved = []assessment.Response{{ID: s.ResponseID(), IsCompleted: true}}
	store.mu.Unlock()

	completed := false
	s.cfg.OnComplete = func(*Session) { completed = true }
	err := s.Submit(context.Background(), false)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateCompleted, s.State())
	assert.True(t, completed)
	assert.Len(t, store.all(), 1)
}

func TestSession_RestoresDraft(t *testing.T) {
	s, _, _ := newTestSession(t, testAssessment(1))
	draft := &assessment.Response{
		Responses: assessment.Answers{"q1": "Yes", "q2": "1.22"},
		TimeSpent: 50,
	}
	require.NoError(t, s.Start(context.Background(), draft))

	v := s.View()
	assert.Equal(t, "Yes", v.Answers["q1"])
	require.NotNil(t, v.TimeLeft)
	assert.Equal(t, 10, *v.TimeLeft)
}

func TestSession_ExpiredDraftSubmitsImmediately(t *testing.T) {
	s, _, store := newTestSession(t, testAssessment(1))
	require.NoError(t, s.Start(context.Background(), &assessment.Response{TimeSpent: 90}))

	assert.Equal(t, StateCompleted, s.State())
	saved := store.all()
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsCompleted)
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
