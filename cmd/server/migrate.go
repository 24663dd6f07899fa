package main

import (
	"fmt"

	"hireboard/internal/app"
	"hireboard/internal/config"
	"hireboard/internal/database/migration"
	dbpostgres "hireboard/internal/database/postgres"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	skipBackfill bool
	showStatus   bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations and backfill legacy assessment responses",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&skipBackfill, "skip-backfill", false, "Only apply schema migrations")
	migrateCmd.Flags().BoolVar(&showStatus, "status", false, "List migrations and whether they are applied, then exit")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != app.DriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s", app.DriverPostgres)
	}
	log := app.NewLogger(cfg)
	ctx := cmd.Context()

	db, err := dbpostgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if showStatus {
		states, err := (migration.Runner{}).Status(ctx, db.SQLDB())
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, st := range states {
			mark := "pending"
			if st.Applied {
				mark = "applied"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "V%d\t%s\t%s\n", st.Version, st.Name, mark)
		}
		return nil
	}

	if err := app.RunMigrations(ctx, db, log); err != nil {
		return err
	}
	if skipBackfill {
		return nil
	}

	rep, err := migration.BackfillResponses(ctx, db, log)
	if err != nil {
		return fmt.Errorf("backfill responses: %w", err)
	}
	log.WithFields(logrus.Fields{
		"scanned":    rep.Scanned,
		"updated":    rep.Updated,
		"unresolved": len(rep.Unresolved),
	}).Info("migrate finished")
	return nil
}
