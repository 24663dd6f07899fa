package seeder

import (
	"context"
	"errors"

	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/job"
	"hireboard/internal/usecase"
)

type AssessmentSeeder struct{}

func (AssessmentSeeder) Name() string { return "assessments" }

func (AssessmentSeeder) Run(ctx context.Context, t Target) error {
	jobs, err := t.Jobs.List(ctx, job.ListFilter{Status: job.StatusActive, Page: 1, PageSize: 100})
	if err != nil {
		return err
	}

	for _, j := range jobs.Items {
		_, err := t.Assessments.Get(ctx, j.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, usecase.ErrNotFound) {
			return err
		}
		if _, err := t.Assessments.Save(ctx, j.ID, screening(j.Title)); err != nil {
			return err
		}
	}
	return nil
}

func screening(title string) assessment.Assessment {
	return assessment.Assessment{
		Title:       title + " screening",
		Description: "Short screening to confirm the basics before interviews.",
		Settings:    assessment.Settings{TimeLimit: 30, PassingScore: 60},
		Sections: []assessment.Section{
			{
				ID:    "background",
				Title: "Background",
				Questions: []assessment.Question{
					{
						ID:            "relocate",
						Type:          assessment.TypeSingleChoice,
						Title:         "Are you open to relocating?",
						Options:       []string{"Yes", "No"},
						Required:      true,
						CorrectAnswer: "Yes",
						Points:        1,
					},
					{
						ID:        "relocate-when",
						Type:      assessment.TypeShortText,
						Title:     "When could you relocate?",
						Required:  true,
						MaxLength: 120,
						ConditionalLogic: &assessment.ConditionalLogic{
							Enabled:         true,
							TriggerQuestion: "relocate",
							TriggerValue:    "Yes",
						},
					},
					{
						ID:    "experience",
						Type:  assessment.TypeNumeric,
						Title: "Years of professional experience",
						Min:   ptr(0),
						Max:   ptr(40),
					},
				},
			},
			{
				ID:    "skills",
				Title: "Skills",
				Questions: []assessment.Question{
					{
						ID:             "datastores",
						Type:           assessment.TypeMultiChoice,
						Title:          "Which datastores have you run in production?",
						Options:        []string{"PostgreSQL", "Redis", "MongoDB", "Kafka"},
						CorrectAnswers: []string{"PostgreSQL", "Redis"},
						Points:         2,
					},
					{
						ID:        "project",
						Type:      assessment.TypeLongText,
						Title:     "Describe a project you are proud of",
						Required:  true,
						MaxLength: assessment.DefaultLongTextMaxLength,
					},
					{
						ID:                "resume",
						Type:              assessment.TypeFileUpload,
						Title:             "Resume",
						AcceptedFileTypes: []string{".pdf", ".docx"},
						MaxFileSize:       5,
					},
				},
			},
		},
	}
}

func ptr(v float64) *float64 { return &v }
