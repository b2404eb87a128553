package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinical-tracker/internal/config"
	"github.com/hackgods/clinical-tracker/internal/engagement"
)

func sweepCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "nudge-sweep",
		Short: "Periodically record which users are due a catch-up nudge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cfg.LogLevel)
			logger.Info().Str("env", cfg.Env).Dur("interval", cfg.SweepInterval).Msg("nudge-sweep starting up")

			rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := connect(rootCtx, cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("startup failed")
				return err
			}
			defer a.Close(logger)

			// Run once at startup
			runSweep(rootCtx, a.svc, logger)
			if once {
				return nil
			}

			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()

			for {
				select {
				case <-rootCtx.Done():
					logger.Info().Msg("shutdown signal received, stopping nudge sweep")
					return nil
				case <-ticker.C:
					runSweep(rootCtx, a.svc, logger)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and exit")
	return cmd
}

func runSweep(ctx context.Context, svc *engagement.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()
	due, err := svc.SweepNudges(runCtx)
	if err != nil {
		logger.Error().Err(err).Msg("nudge sweep error")
		return
	}
	logger.Info().Int("due", due).Dur("took", time.Since(start)).Msg("nudge sweep complete")
}
