package seeder

import (
	"context"

	"hireboard/internal/domain/job"
	"hireboard/internal/usecase"
)

type JobSeeder struct{}

func (JobSeeder) Name() string { return "jobs" }

func (JobSeeder) Run(ctx context.Context, t Target) error {
	existing, err := t.Jobs.List(ctx, job.ListFilter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		return nil
	}

	items := []usecase.JobInput{
		{
			Title:          "Backend Engineer (Go)",
			Description:    "Build and maintain Go services, REST APIs, and PostgreSQL-backed systems.",
			Role:           "Engineering",
			Location:       "Jakarta, ID",
			EmploymentType: "Full-time",
			SalaryRange:    "$60k - $80k",
			Requirements:   []string{"3+ years of Go", "PostgreSQL", "REST API design"},
			Tags:           []string{"go", "backend", "postgres"},
		},
		{
			Title:          "Frontend Engineer (React)",
			Description:    "Ship recruiter-facing dashboards in React and TypeScript.",
			Role:           "Engineering",
			Location:       "Bandung, ID",
			EmploymentType: "Full-time",
			SalaryRange:    "$55k - $75k",
			Requirements:   []string{"React", "TypeScript", "Accessibility"},
			Tags:           []string{"react", "frontend"},
		},
		{
			Title:          "DevOps Engineer",
			Description:    "Operate CI/CD, Docker, Kubernetes, and cloud infrastructure for production workloads.",
			Role:           "Infrastructure",
			Location:       "Remote",
			EmploymentType: "Contract",
			Requirements:   []string{"Kubernetes", "Terraform"},
			Tags:           []string{"devops", "kubernetes", "remote"},
		},
		{
			Title:          "Technical Recruiter",
			Description:    "Own the hiring funnel for engineering roles.",
			Role:           "People",
			Location:       "Singapore",
			EmploymentType: "Full-time",
			Tags:           []string{"recruiting"},
		},
	}

	for _, it := range items {
		if _, err := t.Jobs.Create(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
