package usecase

import (
	"context"
	"testing"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Stats(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	backend := seedJob(t, st, "Backend Engineer")
	old := seedJob(t, st, "Old Role")
	jobs := NewJobUsecase(st.Jobs(), st.Candidates(), nil, nil, nullLogger())
	_, err := jobs.SetStatus(ctx, old.ID, job.StatusArchived)
	require.NoError(t, err)

	ada := seedCandidate(t, st, backend.ID, "ada")
	grace := seedCandidate(t, st, backend.ID, "grace")
	stages := NewStageUsecase(st.Candidates(), st.History(), st.Notes(), nil, nil, nil, nullLogger())
	_, err = stages.ChangeStage(ctx, ada.ID, candidate.StageHired, "Rita")
	require.NoError(t, err)

	assessments := newAssessments(st, nil)
	_, err = assessments.Save(ctx, backend.ID, screeningAssessment())
	require.NoError(t, err)
	_, err = assessments.Submit(ctx, backend.ID, SubmitInput{CandidateID: ada.ID, Responses: assessment.Answers{"q1": "Yes", "q2": "1.22", "q3": []any{"Postgres"}}})
	require.NoError(t, err)
	_, err = assessments.Submit(ctx, backend.ID, SubmitInput{CandidateID: grace.ID, Responses: assessment.Answers{"q1": "No"}})
	require.NoError(t, err)

	uc := NewDashboardUsecase(st.Jobs(), st.Candidates(), st.Responses(), nullLogger())
	stats, err := uc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.JobsByStatus[job.StatusActive])
	assert.Equal(t, 1, stats.JobsByStatus[job.StatusArchived])
	assert.Equal(t, 2, stats.TotalCandidates)
	assert.Equal(t, 2, stats.CompletedAssessments)
	assert.Equal(t, 1, stats.PassedAssessments)
	assert.Equal(t, 50.0, stats.PassRate)

	byStage := map[candidate.Stage]int{}
	for _, sc := range stats.CandidatesByStage {
		byStage[sc.Stage] = sc.Count
	}
	assert.Equal(t, 1, byStage[candidate.StageApplied])
	assert.Equal(t, 1, byStage[candidate.StageHired])
	assert.Len(t, stats.CandidatesByStage, len(candidate.AllStages()))
}
