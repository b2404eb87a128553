package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinical-tracker/internal/engagement"
)

type RouterConfig struct {
	Service *engagement.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	svc := cfg.Service
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/entries", createEntryHandler(svc))
		r.Get("/entries", listEntriesHandler(svc))
		r.Get("/entries/{id}", getEntryHandler(svc))
		r.Put("/entries/{id}", updateEntryHandler(svc))
		r.Delete("/entries/{id}", deleteEntryHandler(svc))

		r.Get("/stats", statsHandler(svc))
		r.Get("/stats/breakdown", breakdownHandler(svc))
		r.Get("/acuity", acuityHandler(svc))
		r.Get("/rewards", rewardsHandler(svc))

		r.Get("/nudges/{nudgeID}", getNudgeHandler(svc))
		r.Post("/nudges/{nudgeID}/dismiss", dismissNudgeHandler(svc))
		r.Post("/nudges/{nudgeID}/snooze", snoozeNudgeHandler(svc))
		r.Post("/nudges/{nudgeID}/permanent-dismiss", permanentlyDismissNudgeHandler(svc))
	})

	return r
}
