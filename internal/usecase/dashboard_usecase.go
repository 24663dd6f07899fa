package usecase

import (
	"context"
	"math"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type StageCount struct {
	Stage candidate.Stage `json:"stage"`
	Label string          `json:"label"`
	Count int             `json:"count"`
}

type DashboardStats struct {
	JobsByStatus         map[job.Status]int `json:"jobsByStatus"`
	CandidatesByStage    []StageCount       `json:"candidatesByStage"`
	TotalCandidates      int                `json:"totalCandidates"`
	CompletedAssessments int                `json:"completedAssessments"`
	PassedAssessments    int                `json:"passedAssessments"`
	PassRate             float64            `json:"passRate"`
}

type DashboardUsecase interface {
	Stats(ctx context.Context) (DashboardStats, error)
}

type Dashboard struct {
	jobs       job.Repository
	candidates candidate.Repository
	responses  assessment.ResponseRepository
	logger     logrus.FieldLogger
}

func NewDashboardUsecase(jobs job.Repository, candidates candidate.Repository, responses assessment.ResponseRepository, logger logrus.FieldLogger) *Dashboard {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dashboard{jobs: jobs, candidates: candidates, responses: responses, logger: logger}
}

func (u *Dashboard) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		byStatus          map[job.Status]int
		byStage           map[candidate.Stage]int
		completed, passed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = u.jobs.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byStage, err = u.candidates.CountByStage(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		completed, passed, err = u.responses.CountCompleted(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		u.logger.WithError(err).Error("dashboard stats")
		return DashboardStats{}, ErrInternal
	}

	out := DashboardStats{
		JobsByStatus:         byStatus,
		CandidatesByStage:    make([]StageCount, 0, len(candidate.AllStages())),
		CompletedAssessments: completed,
		PassedAssessments:    passed,
	}
	for _, s := range candidate.AllStages() {
		n := byStage[s]
		out.TotalCandidates += n
		out.CandidatesByStage = append(out.CandidatesByStage, StageCount{Stage: s, Label: s.Label(), Count: n})
	}
	if completed > 0 {
		out.PassRate = math.Round(float64(passed)*10000/float64(completed)) / 100
	}
	return out, nil
}
