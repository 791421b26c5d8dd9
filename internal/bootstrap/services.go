package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/jobdispatch/config"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/data"
	"github.com/target/jobdispatch/internal/domain/ref"
	httpx "github.com/target/jobdispatch/internal/http"
	"github.com/target/jobdispatch/internal/observability/metrics"
	"github.com/target/jobdispatch/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	JobDispatches *service.JobDispatchService
	Refs          *service.RefService
	Metrics       *metrics.Metrics
	Health        []httpx.HealthCheck
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional unless the redis ref backend is selected
	Logger      *slog.Logger
}

// refCounters is the counter selection for the configured backend.
type refCounters struct {
	counter   ref.Counter
	primary   core.RefSequenceRepository
	secondary core.RefCounterSyncer
}

// selectRefCounters picks the counter that generates refs. With the postgres backend a
// connected Redis becomes the secondary so it can be synced ahead of a backend switch.
func selectRefCounters(cfg config.RefsConfig, db *sql.DB, client redis.UniversalClient) (refCounters, error) {
	pg := data.NewRefSequenceRepo(db)
	var rc *data.RedisRefCounter
	if client != nil {
		rc = data.NewRedisRefCounter(client, cfg.RedisKeyPrefix)
	}

	switch cfg.Backend {
	case config.RefBackendRedis:
		if rc == nil {
			return refCounters{}, errors.New("redis ref backend selected but no redis client is configured")
		}
		return refCounters{counter: rc, primary: rc}, nil
	case config.RefBackendPostgres, "":
		out := refCounters{counter: pg, primary: pg}
		if rc != nil {
			out.secondary = rc
		}
		return out, nil
	default:
		return refCounters{}, fmt.Errorf("unknown ref backend %q", cfg.Backend)
	}
}

// NewServices builds repositories and services from deps.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return nil, errors.New("config and database are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var m *metrics.Metrics
	if cfg.Observability.Metrics.IsEnabled() {
		m = metrics.New(metrics.Options{RuntimeCollectors: cfg.Observability.Metrics.RuntimeCollectors})
	}

	counters, err := selectRefCounters(cfg.Refs, deps.DB, deps.RedisClient)
	if err != nil {
		return nil, err
	}
	genOpts := ref.GeneratorOptions{Counter: counters.counter, Prefixes: cfg.Refs.Prefixes()}
	if m != nil {
		genOpts.Observer = m
	}
	gen, err := ref.NewGenerator(genOpts)
	if err != nil {
		return nil, fmt.Errorf("create ref generator: %w", err)
	}

	repo := data.NewJobDispatchRepo(deps.DB, data.JobDispatchRepoConfig{Refs: gen, Logger: logger})
	dispatches, err := service.NewJobDispatchService(service.JobDispatchServiceOptions{
		Repo:    repo,
		Audits:  data.NewAuditRequestRepo(deps.DB),
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	refs, err := service.NewRefService(service.RefServiceOptions{
		Refs:      gen,
		Primary:   counters.primary,
		Secondary: counters.secondary,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	health := []httpx.HealthCheck{{Name: "postgres", Check: deps.DB.PingContext}}
	if deps.RedisClient != nil {
		client := deps.RedisClient
		health = append(health, httpx.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	return &ServiceContainer{
		JobDispatches: dispatches,
		Refs:          refs,
		Metrics:       m,
		Health:        health,
	}, nil
}
