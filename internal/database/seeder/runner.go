package seeder

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner applies seeders in order and stops at the first failure. With Only
// set, seeders whose Name is not listed are skipped.
type Runner struct {
	Seeders []Seeder
	Only    []string
	Logger  logrus.FieldLogger
}

func (r Runner) Run(ctx context.Context, t Target) error {
	if err := r.checkOnly(); err != nil {
		return err
	}

	for _, s := range r.Seeders {
		if s == nil || (len(r.Only) > 0 && !slices.Contains(r.Only, s.Name())) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := s.Run(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{
				"seeder":   s.Name(),
				"duration": time.Since(start).String(),
			}).Info("seeder finished")
		}
	}
	return nil
}

func (r Runner) checkOnly() error {
	for _, name := range r.Only {
		if !slices.ContainsFunc(r.Seeders, func(s Seeder) bool { return s != nil && s.Name() == name }) {
			return fmt.Errorf("unknown seeder %q", name)
		}
	}
	return nil
}
