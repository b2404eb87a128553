package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/config"
	"github.com/hackgods/clinical-tracker/internal/engagement"
)

var seedConfidence = []string{
	string(clinical.ConfidenceObserved),
	string(clinical.ConfidenceUsedIt),
	string(clinical.ConfidenceCouldTeach),
}

var seedNotes = []string{
	"Busy night, two admits from the OR.",
	"Titrated pressors most of the shift.",
	"Precepted a new grad, good learning day.",
	"Rapid response early, stable after.",
	"Post-op hearts, lots of drips to manage.",
	"Quiet shift, spent time reviewing hemodynamics.",
}

var seedCustomMeds = []string{"Cangrelor", "Clevidipine", "Nicardipine", "Esmolol", "Bivalirudin"}

func seedCmd() *cobra.Command {
	var users, entries, spanDays int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Log fake shifts for a batch of users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cfg.LogLevel)
			logger.Info().Int("users", users).Int("entries", entries).Msg("seed starting")

			ctx := cmd.Context()
			a, err := connect(ctx, cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("startup failed")
				return err
			}
			defer a.Close(logger)

			for i := 0; i < users; i++ {
				userID := uuid.New()
				if err := seedUser(ctx, a.svc, a.cats, userID, entries, spanDays); err != nil {
					return fmt.Errorf("seed user %s: %w", userID, err)
				}
				logger.Info().Str("user_id", userID.String()).Int("entries", entries).Msg("user seeded")
			}

			logger.Info().Msg("seed complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 5, "number of users to create")
	cmd.Flags().IntVar(&entries, "entries", 12, "shifts to log per user")
	cmd.Flags().IntVar(&spanDays, "span-days", 90, "spread shift dates over this many past days")
	return cmd
}

func seedUser(ctx context.Context, svc *engagement.Service, cats catalog.Catalogs, userID uuid.UUID, entries, spanDays int) error {
	today := clinical.DateOnly(time.Now())
	for i := 0; i < entries; i++ {
		res, err := svc.AddEntry(ctx, userID, fakeForm(cats, today.AddDate(0, 0, -gofakeit.Number(0, spanDays))))
		if err != nil {
			return err
		}
		if res.Warning != nil {
			return res.Warning
		}
	}
	return nil
}

func fakeForm(cats catalog.Catalogs, shiftDate time.Time) clinical.FormData {
	form := clinical.FormData{
		ShiftDate:          shiftDate,
		PatientPopulations: pickIDs(cats.Populations, 1, 3),
		Medications:        pickRefs(cats.Medications, 1, 5),
		Devices:            pickRefs(cats.Devices, 0, 4),
		Procedures:         pickRefs(cats.Procedures, 0, 3),
		Notes:              gofakeit.RandomString(seedNotes),
	}
	if gofakeit.Number(0, 9) == 0 {
		form.CustomMedications = []string{gofakeit.RandomString(seedCustomMeds)}
	}
	return form
}

func pickIDs(t *catalog.Taxonomy, lo, hi int) []string {
	items := t.Items()
	if len(items) == 0 {
		return nil
	}
	n := gofakeit.Number(lo, hi)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[gofakeit.Number(0, len(items)-1)].ID)
	}
	return out
}

func pickRefs(t *catalog.Taxonomy, lo, hi int) clinical.ItemRefs {
	ids := pickIDs(t, lo, hi)
	refs := make(clinical.ItemRefs, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, clinical.ItemRef{
			CategoryID:      id,
			ConfidenceLevel: clinical.ConfidenceLevel(gofakeit.RandomString(seedConfidence)),
		})
	}
	return refs
}
