package main

import (
	"context"
	"fmt"

	"hireboard/internal/app"
	"hireboard/internal/config"
	"hireboard/internal/database/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo jobs, candidates with stage history, and assessments",
	RunE:  runSeed,
}

var seedOnly []string

func init() {
	seedCmd.Flags().StringSliceVar(&seedOnly, "only", nil, "Run only the named seeders (recruiter, jobs, candidates, assessments)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if c.DB != nil {
		if err := seeder.CheckSchema(ctx, c.DB, seeder.RequiredColumns); err != nil {
			return fmt.Errorf("%w\nrun `hireboard migrate` first", err)
		}
	}

	return seedDemo(ctx, c, seedOnly...)
}

func seedDemo(ctx context.Context, c *app.Container, only ...string) error {
	uc := c.Usecases
	runner := seeder.Runner{Seeders: seeder.Defaults(), Only: only, Logger: c.Logger}
	return runner.Run(ctx, seeder.Target{
		Auth:        uc.Auth,
		Jobs:        uc.Jobs,
		Candidates:  uc.Candidates,
		Stages:      uc.Stages,
		Assessments: uc.Assessments,
	})
}
