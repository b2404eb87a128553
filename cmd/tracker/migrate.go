package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinical-tracker/internal/config"
	"github.com/hackgods/clinical-tracker/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cfg.LogLevel)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				logger.Error().Err(err).Msg("postgres connection error")
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				logger.Error().Err(err).Msg("migration failed")
				return err
			}
			logger.Info().Int("version", db.SchemaVersion).Msg("schema up to date")
			return nil
		},
	}
}
