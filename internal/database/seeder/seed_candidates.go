package seeder

import (
	"context"
	"fmt"
	"strings"

	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/usecase"
)

const seedAuthor = "seeder"

type CandidateSeeder struct{}

func (CandidateSeeder) Name() string { return "candidates" }

// Run gives every active job a handful of candidates spread across the
// pipeline. Stage moves go through the stage usecase so each candidate gets
// a real history.
func (CandidateSeeder) Run(ctx context.Context, t Target) error {
	existing, err := t.Candidates.List(ctx, candidate.ListFilter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		return nil
	}

	jobs, err := t.Jobs.List(ctx, job.ListFilter{Status: job.StatusActive, Page: 1, PageSize: 100})
	if err != nil {
		return err
	}

	people := []struct {
		Name  string
		Phone string
		Path  []candidate.Stage
	}{
		{Name: "Maria Santos", Phone: "+62 811 0001", Path: nil},
		{Name: "Tom Becker", Phone: "+62 811 0002", Path: []candidate.Stage{candidate.StageOnlineAssessment}},
		{Name: "Aiko Tanaka", Phone: "", Path: []candidate.Stage{candidate.StageOnlineAssessment, candidate.StageTechnicalInterview}},
		{Name: "Budi Hartono", Phone: "+62 811 0004", Path: []candidate.Stage{candidate.StageTechnicalInterview, candidate.StageFinalInterview, candidate.StageHired}},
		{Name: "Lena Fischer", Phone: "", Path: []candidate.Stage{candidate.StageOnlineAssessment, candidate.StageRejected}},
	}

	for ji, j := range jobs.Items {
		for pi, p := range people {
			email := fmt.Sprintf("%s.%d@example.com", strings.ToLower(strings.ReplaceAll(p.Name, " ", ".")), ji+1)
			c, err := t.Candidates.Create(ctx, usecase.CandidateInput{
				Name:  p.Name,
				Email: email,
				Phone: p.Phone,
				JobID: j.ID,
			}, seedAuthor)
			if err != nil {
				return err
			}
			for _, st := range p.Path {
				if _, err := t.Stages.ChangeStage(ctx, c.ID, st, seedAuthor); err != nil {
					return fmt.Errorf("move %s to %s: %w", c.Name, st, err)
				}
			}
			if pi == 1 {
				if _, err := t.Candidates.AddNote(ctx, c.ID, "Strong portfolio, loop in @maria for the take-home.", seedAuthor); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
