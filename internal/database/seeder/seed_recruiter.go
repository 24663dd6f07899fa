package seeder

import (
	"context"
	"errors"

	ucauth "hireboard/internal/usecase/auth"
)

const (
	DemoRecruiterEmail    = "recruiter@hireboard.dev"
	DemoRecruiterPassword = "hireboard123"
)

type RecruiterSeeder struct{}

func (RecruiterSeeder) Name() string { return "recruiter" }

func (RecruiterSeeder) Run(ctx context.Context, t Target) error {
	if t.Auth == nil {
		return nil
	}
	_, err := t.Auth.Register(ctx, ucauth.RegisterInput{
		Email:    DemoRecruiterEmail,
		Name:     "Demo Recruiter",
		Password: DemoRecruiterPassword,
	})
	if errors.Is(err, ucauth.ErrEmailAlreadyRegistered) {
		return nil
	}
	return err
}
