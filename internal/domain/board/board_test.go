package board

import (
	"strings"
	"testing"
	"time"

	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_HappyPath(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	tr := Transition{CandidateID: id, Status: StatusIdle}

	tr, err := Reduce(tr, Requested{From: candidate.StageApplied, To: candidate.StageTechnicalInterview, Author: "rita", At: now})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tr.Status)
	assert.True(t, strings.HasPrefix(tr.ProvisionalID, ProvisionalPrefix))
	assert.Equal(t, candidate.StageTechnicalInterview, tr.DisplayStage(candidate.StageApplied))

	entry := uuid.New()
	tr, err = Reduce(tr, Succeeded{EntryID: entry, At: now})
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, tr.Status)
	require.NotNil(t, tr.EntryID)
	assert.Equal(t, entry, *tr.EntryID)
	assert.Equal(t, candidate.StageTechnicalInterview, tr.DisplayStage(candidate.StageTechnicalInterview))
}

func TestReduce_FailureRollsBack(t *testing.T) {
	tr, err := Reduce(Transition{Status: StatusIdle}, Requested{From: candidate.StageApplied, To: candidate.StageHired})
	require.NoError(t, err)

	tr, err = Reduce(tr, Failed{Reason: "db down"})
	require.NoError(t, err)
	assert.Equal(t, StatusRolledBack, tr.Status)
	assert.Equal(t, "db down", tr.Reason)
	assert.Equal(t, candidate.StageApplied, tr.DisplayStage(candidate.StageApplied))
	// a concurrent move may have landed meanwhile
	assert.Equal(t, candidate.StageOnlineAssessment, tr.DisplayStage(candidate.StageOnlineAssessment))
}

func TestReduce_IllegalEvents(t *testing.T) {
	idle := Transition{Status: StatusIdle}

	got, err := Reduce(idle, Succeeded{EntryID: uuid.New()})
	assert.ErrorIs(t, err, ErrIllegalEvent)
	assert.Equal(t, idle, got)

	_, err = Reduce(idle, Failed{})
	assert.ErrorIs(t, err, ErrIllegalEvent)

	pending, err := Reduce(idle, Requested{From: candidate.StageApplied, To: candidate.StageHired})
	require.NoError(t, err)
	_, err = Reduce(pending, Requested{From: candidate.StageApplied, To: candidate.StageRejected})
	assert.ErrorIs(t, err, ErrIllegalEvent)
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker()
	id := uuid.New()

	assert.Equal(t, StatusIdle, tr.Get(id).Status)

	_, err := tr.Begin(id, candidate.StageApplied, candidate.StageOnlineAssessment, "rita")
	require.NoError(t, err)
	_, pending := tr.Pending(id)
	assert.True(t, pending)

	_, err = tr.Begin(id, candidate.StageApplied, candidate.StageHired, "rita")
	assert.ErrorIs(t, err, ErrIllegalEvent)

	got, err := tr.Rollback(id, "boom")
	require.NoError(t, err)
	assert.Equal(t, StatusRolledBack, got.Status)

	_, err = tr.Begin(id, candidate.StageApplied, candidate.StageHired, "rita")
	require.NoError(t, err, "a new move may start after a rollback")
	got, err = tr.Commit(id, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, got.Status)
}

func TestBuild_PlacesPendingCardsInTargetColumn(t *testing.T) {
	jobID := uuid.New()
	a := candidate.Candidate{ID: uuid.New(), Name: "Ada", Stage: candidate.StageApplied}
	b := candidate.Candidate{ID: uuid.New(), Name: "Bob", Stage: candidate.StageHired}

	tracker := NewTracker()
	_, err := tracker.Begin(a.ID, candidate.StageApplied, candidate.StageFinalInterview, "rita")
	require.NoError(t, err)

	brd := Build(jobID, []candidate.Candidate{a, b}, tracker)
	require.Len(t, brd.Columns, 6)

	byStage := map[candidate.Stage][]string{}
	for _, col := range brd.Columns {
		for _, c := range col.Cards {
			byStage[col.Stage] = append(byStage[col.Stage], c.Candidate.Name)
		}
	}
	assert.Equal(t, []string{"Ada"}, byStage[candidate.StageFinalInterview])
	assert.Equal(t, []string{"Bob"}, byStage[candidate.StageHired])
	assert.Empty(t, byStage[candidate.StageApplied])
	assert.Equal(t, "Applied", brd.Columns[0].Label)
}
