package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinicflow/practice/internal/db/migrations"
	"github.com/clinicflow/practice/pkg/billing"
	"github.com/clinicflow/practice/pkg/config"
	"github.com/clinicflow/practice/pkg/httpserver"
	"github.com/clinicflow/practice/pkg/jwt"
	"github.com/clinicflow/practice/pkg/logger"
	"github.com/clinicflow/practice/pkg/pg"
	"github.com/clinicflow/practice/pkg/redis"
	"github.com/clinicflow/practice/pkg/subscription"
	"github.com/clinicflow/practice/svc/api"
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	app, log, err := loadApp()
	if err != nil {
		return err
	}

	var (
		httpCfg    httpserver.Config
		redisCfg   redis.Config
		apiCfg     api.Config
		jwtCfg     jwt.Config
		paddleCfg  billing.PaddleConfig
		breakerCfg billing.BreakerConfig
	)
	if err := errors.Join(
		config.Load(&httpCfg),
		config.Load(&redisCfg),
		config.Load(&apiCfg),
		config.Load(&jwtCfg),
		config.Load(&paddleCfg),
		config.Load(&breakerCfg),
	); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, pgCfg, err := connectPostgres(ctx, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
			return err
		}
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.WarnContext(ctx, "failed to close redis client", logger.Error(err))
		}
	}()

	catalog, err := billing.LoadCatalogFile(app.PlansFile)
	if err != nil {
		return err
	}

	tokens, err := jwt.New(jwtCfg)
	if err != nil {
		return err
	}

	paddle, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return err
	}
	provider := billing.NewBreakerProvider(paddle, breakerCfg, log)

	subs := subscription.NewService(subscription.NewPostgresStore(pool), subscription.WithLogger(log))
	ledger := billing.NewPostgresLedger(pool)
	processor := billing.NewProcessor(subs, ledger, billing.NewPostgresConfirmer(pool),
		billing.WithProviderName(provider.Name()),
		billing.WithDeduplicator(billing.NewRedisDeduplicator(rdb, "", 0)),
		billing.WithCatalog(catalog),
		billing.WithProcessorLogger(log),
	)

	a, err := api.New(apiCfg, api.Deps{
		Subscriptions: subs,
		Provider:      provider,
		Events:        processor,
		Payments:      ledger,
		Catalog:       catalog,
		Tokens:        tokens,
		Logger:        log,
		Checks: map[string]httpserver.CheckFunc{
			"postgres": pg.Healthcheck(pool),
			"redis":    redis.Healthcheck(rdb),
		},
	})
	if err != nil {
		return err
	}
	go a.RunBackground(ctx)

	log.InfoContext(ctx, "starting practice API",
		logger.Component("practiced"),
		logger.Provider(provider.Name()),
	)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, a.Routes())
}
