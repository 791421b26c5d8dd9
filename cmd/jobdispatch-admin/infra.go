package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/jobdispatch/config"
	"github.com/target/jobdispatch/internal/bootstrap"
	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/projection"
)

type dispatchService interface {
	GetView(ctx context.Context, id string, fs projection.FieldSet) (*projection.View, error)
	GetViewByRef(ctx context.Context, ref string, fs projection.FieldSet) (*projection.View, error)
	Stats(ctx context.Context) (model.JobDispatchStats, error)
}

type refService interface {
	Next(ctx context.Context, prefix string) (string, error)
	NextFor(ctx context.Context, entity string) (string, error)
	Current(ctx context.Context, prefix string) (int64, error)
	SyncSecondary(ctx context.Context, prefix string) (int64, error)
}

// backend is what a command needs from the infrastructure. Close releases every connection.
type backend struct {
	Dispatches dispatchService
	Refs       refService
	Migrate    func(ctx context.Context) error
	Close      func() error
}

type openRequest struct {
	Config    *config.AppConfig
	Logger    *slog.Logger
	WantRedis bool
}

type openFunc func(ctx context.Context, req *openRequest) (*backend, error)

// openBackend connects Postgres, and Redis when the command or the ref backend needs it.
func openBackend(ctx context.Context, req *openRequest) (*backend, error) {
	dbCfg := bootstrap.DatabaseConfig{DBConfig: req.Config.Postgres, RedisConfig: req.Config.Redis, Logger: req.Logger}
	db, err := bootstrap.ConnectDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	var redisClient redis.UniversalClient
	if req.WantRedis || req.Config.NeedsRedis() {
		redisClient, err = bootstrap.ConnectRedis(dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), db.Close())
		}
	}

	closeAll := func() error {
		var errs []error
		if redisClient != nil {
			errs = append(errs, redisClient.Close())
		}
		errs = append(errs, db.Close())
		return errors.Join(errs...)
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      req.Config,
		DB:          db,
		RedisClient: redisClient,
		Logger:      req.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}

	return &backend{
		Dispatches: services.JobDispatches,
		Refs:       services.Refs,
		Migrate:    migrateFunc(db, req.Logger),
		Close:      closeAll,
	}, nil
}

func migrateFunc(db *sql.DB, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return bootstrap.RunMigrations(ctx, db, logger)
	}
}
