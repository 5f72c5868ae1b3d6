package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/burhani-guards/guards-api/internal/bootstrap"
	platformclock "github.com/burhani-guards/guards-api/internal/platform/clock"
	"github.com/burhani-guards/guards-api/internal/platform/password"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and upsert the seed captain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := commonRun()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			repos, err := bootstrap.OpenRepos(ctx, cfg)
			if err != nil {
				return err
			}
			defer repos.Close()
			if !repos.Persistent() {
				return errors.New("migrate needs a database storage backend")
			}

			if err := repos.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("schema applied", "storage", cfg.StorageBackend)

			seeded, err := bootstrap.SeedCaptain(ctx, repos.Captains, cfg, password.NewBcrypt(cfg.BcryptCost), platformclock.NewSystemClock())
			if err != nil {
				return err
			}
			if seeded {
				logger.Info("seed captain upserted", "its_id", cfg.SeedCaptainITS)
			}
			return nil
		},
	}
}
