package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/repository/memory"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCandidates struct {
	candidate.Repository
	err error
}

func (f failingCandidates) ApplyStageChange(context.Context, candidate.HistoryEntry) error {
	return f.err
}

func newStages(st *memory.Store, repo candidate.Repository, tracker *board.Tracker, events Broadcaster) *Stages {
	return NewStageUsecase(repo, st.History(), st.Notes(), tracker, &mapLocker{}, events, nullLogger())
}

func TestChangeStage_ForwardSkipWritesOneEntry(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	j := seedJob(t, st, "Backend Engineer")
	c := seedCandidate(t, st, j.ID, "ada")

	events := &recordingBroadcaster{}
	tracker := board.NewTracker()
	uc := newStages(st, st.Candidates(), tracker, events)

	res, err := uc.ChangeStage(ctx, c.ID, candidate.StageTechnicalInterview, "Rita")
	require.NoError(t, err)
	assert.Equal(t, candidate.StageTechnicalInterview, res.Candidate.Stage)
	assert.Equal(t, "Stage changed: Applied → Technical Interview", res.Entry.Description)
	assert.Equal(t, "Rita", res.Entry.Author)

	hist, err := st.History().ListByCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, res.Entry.ID, hist[1].ID)

	require.Len(t, res.Timeline, 2)
	for _, it := range res.Timeline {
		assert.False(t, it.Provisional)
		assert.False(t, strings.HasPrefix(it.ID, board.ProvisionalPrefix))
	}

	assert.Equal(t, []string{EventStagePending, EventStageCommitted}, events.types())
	assert.Equal(t, board.StatusCommitted, tracker.Get(c.ID).Status)
}

func TestChangeStage_BackwardRejectedWithoutHistory(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	j := seedJob(t, st, "Backend Engineer")
	c := seedCandidate(t, st, j.ID, "ada")

	events := &recordingBroadcaster{}
	uc := newStages(st, st.Candidates(), board.NewTracker(), events)

	_, err := uc.ChangeStage(ctx, c.ID, candidate.StageTechnicalInterview, "Rita")
	require.NoError(t, err)

	_, err = uc.ChangeStage(ctx, c.ID, candidate.StageOnlineAssessment, "Rita")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.EqualError(t, err, "cannot move candidate from Technical Interview to Online Assessment")

	got, err := st.Candidates().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, candidate.StageTechnicalInterview, got.Stage)

	hist, err := st.History().ListByCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
	assert.Equal(t, []string{EventStagePending, EventStageCommitted}, events.types())

	_, err = uc.ChangeStage(ctx, c.ID, candidate.StageTechnicalInterview, "Rita")
	assert.ErrorIs(t, err, ErrInvalidTransition, "no-op move")
}

func TestChangeStage_HiredRejectedOverride(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	j := seedJob(t, st, "Backend Engineer")
	c := seedCandidate(t, st, j.ID, "ada")
	uc := newStages(st, st.Candidates(), board.NewTracker(), nil)

	for _, to := range []candidate.Stage{candidate.StageHired, candidate.StageRejected, candidate.StageHired} {
		res, err := uc.ChangeStage(ctx, c.ID, to, "Rita")
		require.NoError(t, err, "move to %s", to)
		assert.Equal(t, to, res.Candidate.Stage)
	}

	hist, err := st.History().ListByCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 4)
}

func TestChangeStage_PersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	j := seedJob(t, st, "Backend Engineer")
	c := seedCandidate(t, st, j.ID, "ada")

	events := &recordingBroadcaster{}
	tracker := board.NewTracker()
	repo := failingCandidates{Repository: st.Candidates(), err: errors.New("disk full")}
	uc := newStages(st, repo, tracker, events)

	_, err := uc.ChangeStage(ctx, c.ID, candidate.StageFinalInterview, "Rita")
	require.ErrorIs(t, err, ErrInternal)

	tr := tracker.Get(c.ID)
	assert.Equal(t, board.StatusRolledBack, tr.Status)
	assert.Equal(t, candidate.StageApplied, tr.DisplayStage(candidate.StageApplied))
	assert.Equal(t, []string{EventStagePending, EventStageRolledBack}, events.types())

	hist, err := st.History().ListByCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	brd := board.Build(j.ID, []candidate.Candidate{c}, tracker)
	assert.Len(t, brd.Columns[0].Cards, 1, "card is back in Applied")
}

func TestChangeStage_ConflictAndLocking(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	j := seedJob(t, st, "Backend Engineer")
	c := seedCandidate(t, st, j.ID, "ada")

	repo := failingCandidates{Repository: st.Candidates(), err: candidate.ErrStageConflict}
	uc := newStages(st, repo, board.NewTracker(), nil)
	_, err := uc.ChangeStage(ctx, c.ID, candidate.StageHired, "Rita")
	assert.ErrorIs(t, err, ErrStageConflict)

	locker := &mapLocker{}
	unlock, ok, err := locker.TryLock(ctx, StageLockKey(c.ID), 0)
	require.NoError(t, err)
	require.True(t, ok)
	locked := NewStageUsecase(st.Candidates(), st.History(), st.Notes(), board.NewTracker(), locker, nil, nullLogger())
	_, err = locked.ChangeStage(ctx, c.ID, candidate.StageHired, "Rita")
	assert.ErrorIs(t, err, ErrStageChangeInProgress)
	unlock()

	_, err = locked.ChangeStage(ctx, c.ID, candidate.StageHired, "Rita")
	assert.NoError(t, err)
}

func TestChangeStage_InputErrors(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	uc := newStages(st, st.Candidates(), board.NewTracker(), nil)

	_, err := uc.ChangeStage(ctx, uuid.New(), candidate.StageHired, "Rita")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = uc.ChangeStage(ctx, uuid.New(), candidate.Stage("interviewing"), "Rita")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "stage")
}
