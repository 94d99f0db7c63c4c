package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicflow/practice/pkg/config"
	"github.com/clinicflow/practice/pkg/logger"
	"github.com/clinicflow/practice/pkg/pg"
	"github.com/clinicflow/practice/pkg/requestid"
)

func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return config.LoadEnv(paths...)
}

// newLogger builds the process logger from the app config and makes it the slog default.
func newLogger(app config.App) *slog.Logger {
	log := logger.New(
		logger.WithEnvironment(string(app.Env), app.ServiceName),
		logger.WithLevelName(app.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)
	return log
}

func loadApp() (config.App, *slog.Logger, error) {
	var app config.App
	if err := config.Load(&app); err != nil {
		return app, nil, fmt.Errorf("failed to load app config: %w", err)
	}
	return app, newLogger(app), nil
}

func connectPostgres(ctx context.Context, log *slog.Logger) (*pgxpool.Pool, pg.Config, error) {
	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return nil, cfg, fmt.Errorf("failed to load postgres config: %w", err)
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, cfg, err
	}
	log.InfoContext(ctx, "connected to postgres", logger.Component("pg"))
	return pool, cfg, nil
}
