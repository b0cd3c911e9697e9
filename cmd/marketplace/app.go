package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/goliatone/go-marketplace/activitymap"
	"github.com/goliatone/go-marketplace/cache"
	"github.com/goliatone/go-marketplace/config"
	"github.com/goliatone/go-marketplace/logging"
	"github.com/goliatone/go-marketplace/metrics"
	"github.com/goliatone/go-router"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const pingTimeout = 5 * time.Second

// App holds the long lived resources of the process
type App struct {
	HTTP   router.Server[*fiber.App]
	DB     *bun.DB
	Redis  *redis.Client
	Meters *sdkmetric.MeterProvider
	logger *logging.Logger
}

// NewApp opens the database, creates the schema and wires every component
// into a fiber app
func NewApp(ctx context.Context, cfg config.Config, lgr *logging.Logger) (*App, error) {
	app := &App{logger: lgr}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db

	if err := marketplace.CreateSchema(ctx, db); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("schema: %w", err)
	}

	var catalogCache marketplace.CatalogCache
	if cfg.RedisAddr != "" {
		app.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := app.Redis.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			lgr.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			catalogCache = cache.NewRedis(app.Redis,
				cache.WithTTL(cfg.CatalogCacheTTL),
				cache.WithLogger(lgr.Named("cache")),
			)
		}
	}

	app.Meters = sdkmetric.NewMeterProvider()
	recorder, err := metrics.FromProvider(app.Meters)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	tokens, err := marketplace.NewTokenService([]byte(cfg.GetSigningKey()),
		marketplace.WithTokenLogger(lgr.Named("tokens")),
	)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	repo := marketplace.NewRepositoryManager(db)
	repo.MustValidate()

	activity := activitymap.NewLogSink(lgr.Named("activity"))

	verifier := marketplace.NewCredentialVerifier(cfg).WithLogger(lgr.Named("credentials"))
	resolver := marketplace.NewIdentityResolver(tokens, repo.Users(), verifier).WithLogger(lgr.Named("resolver"))
	cookie := marketplace.NewSessionCookie(cfg.IsProduction())

	gate := marketplace.NewAccessGate(resolver, cookie,
		marketplace.WithGateLogger(lgr.Named("gate")),
		marketplace.WithGateActivitySink(activity),
		marketplace.WithGateMetrics(recorder),
	)

	auther := marketplace.NewAuthenticator(repo.Users(), tokens, verifier, cfg).
		WithLogger(lgr.Named("auth")).
		WithActivitySink(activity).
		WithMetrics(recorder)

	catalog := marketplace.NewCatalog(repo.Templates(), catalogCache).WithLogger(lgr.Named("catalog"))
	purchasing := marketplace.NewPurchasing(repo.Purchases(), repo.Templates()).WithLogger(lgr.Named("purchases"))

	app.HTTP = marketplace.NewApp(marketplace.AppOptions{
		Logger:       lgr.Named("http"),
		CORSOrigin:   cfg.CORSOrigin,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	marketplace.RegisterRoutes(app.HTTP.Router(), marketplace.Handlers{
		Gate:      gate,
		Auth:      marketplace.NewAuthController(auther, cookie, marketplace.WithAuthControllerLogger(lgr.Named("auth"))),
		Templates: marketplace.NewTemplatesController(catalog),
		Purchases: marketplace.NewPurchasesController(purchasing),
		Stats:     marketplace.NewStatsController(repo),
	})

	return app, nil
}

// Close releases the database, redis and meter provider
func (a *App) Close(ctx context.Context) {
	if a.Meters != nil {
		if err := a.Meters.Shutdown(ctx); err != nil {
			a.logger.Warn("meter provider shutdown failed", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("redis close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Warn("database close failed", "error", err)
		}
	}
}

func openDatabase(ctx context.Context, cfg config.Config) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		sqldb, err := sql.Open("pgx", cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseURI)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DatabaseDriver, err)
	}

	return db, nil
}
