package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hackgods/clinical-tracker/internal/acuity"
	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/clinical"
	"github.com/hackgods/clinical-tracker/internal/config"
	"github.com/hackgods/clinical-tracker/internal/db"
	"github.com/hackgods/clinical-tracker/internal/engagement"
	"github.com/hackgods/clinical-tracker/internal/events"
	"github.com/hackgods/clinical-tracker/internal/nudge"
	redisclient "github.com/hackgods/clinical-tracker/internal/redis"
	"github.com/hackgods/clinical-tracker/internal/rewards"
	"github.com/hackgods/clinical-tracker/internal/stats"
)

// app holds the connected stores and the service built on them.
type app struct {
	cats      catalog.Catalogs
	pgPool    *pgxpool.Pool
	rdb       *redis.Client
	publisher events.Publisher
	svc       *engagement.Service
}

func (a *app) Close(logger zerolog.Logger) {
	if err := a.publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing event publisher")
	}
	if err := a.rdb.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing redis")
	}
	a.pgPool.Close()
}

func connect(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	cats, scoring, err := loadCatalogs(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns)
	cancelPg()
	if err != nil {
		return nil, fmt.Errorf("postgres connection: %w", err)
	}
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(ctx, redisclient.ClientOptions{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	logger.Info().Msg("connected to Redis")

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to Kafka")
	}

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	svc := engagement.NewService(engagement.Deps{
		Repo:           clinical.NewPgRepository(pgPool),
		Rewards:        rewards.NewRedisLedger(rdb, nil),
		Nudges:         nudge.NewRedisStore(rdb, locker),
		Stats:          stats.NewAggregator(cats),
		Scorer:         acuity.NewEngine(cats, scoring),
		Publisher:      publisher,
		Logger:         logger,
		PointsPerEntry: cfg.PointsPerEntry,
		AwardTimeout:   cfg.AwardTimeout,
		PublishTimeout: cfg.PublishTimeout,
	})

	return &app{cats: cats, pgPool: pgPool, rdb: rdb, publisher: publisher, svc: svc}, nil
}

// loadCatalogs returns the built-in catalogs and scoring curves, overlaid
// with the contents of path when one is given.
func loadCatalogs(path string) (catalog.Catalogs, acuity.Config, error) {
	if path == "" {
		return catalog.Default(), acuity.DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return catalog.Catalogs{}, acuity.Config{}, fmt.Errorf("read catalog file: %w", err)
	}
	cats, err := catalog.FromViper(v)
	if err != nil {
		return catalog.Catalogs{}, acuity.Config{}, err
	}
	scoring, err := acuity.ConfigFromViper(v)
	if err != nil {
		return catalog.Catalogs{}, acuity.Config{}, err
	}
	return cats, scoring, nil
}
