package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/catalog"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/checkout"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/config"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/event"
	handler "github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/handler/http"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/service"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/storage"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/store"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/database"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/health"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/httpclient"
	pkgkafka "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/kafka"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/middleware"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/tracing"
)

const (
	serviceName    = "storefront-service"
	serviceVersion = "1.0.0"

	slowQueryThreshold = 100 * time.Millisecond
	purgeInterval      = time.Hour
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	purger         *storage.PostgresKV
	producer       *pkgkafka.Producer
	sessions       *service.Registry
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	kv, err := a.openSubstrate(ctx)
	if err != nil {
		a.closeSubstrate()
		return nil, err
	}

	// Events are optional; without brokers state changes are not published.
	var events event.Publisher = event.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Backend clients share one retrying HTTP client, each behind its own breaker.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	catalogDoer := httpclient.NewCircuitBreakerClient(baseClient, a.breakerConfig("catalog"), logger).
		WithFallback(catalog.CircuitOpenFallback)
	paymentDoer := httpclient.NewCircuitBreakerClient(baseClient, a.breakerConfig("payment"), logger).
		WithFallback(checkout.CircuitOpenFallback)

	catalogClient := catalog.NewClient(catalogDoer, cfg.CatalogAPIURL, logger)
	paymentClient := checkout.NewPaymentClient(paymentDoer, cfg.CatalogAPIURL, logger)

	a.sessions = service.NewRegistry(
		storage.NewAdapter[domain.CartLine](kv, logger),
		storage.NewAdapter[domain.Product](kv, logger),
		store.LogNotifier{Logger: logger},
		logger,
	)
	storefront := service.NewStorefront(a.sessions, catalogClient, paymentClient, events, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical(cfg.StorageBackend, kv.Ping)
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	routerCfg := handler.RouterConfig{
		Session: handler.SessionConfig{
			CookieName: cfg.SessionCookieName,
			Secure:     cfg.SessionCookieSecure,
			MaxAge:     cfg.StateTTL(),
		},
		CORS:                middleware.DefaultCORSConfig(),
		CatalogCacheSeconds: cfg.CatalogCacheSeconds,
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	}
	routerCfg.CORS.AllowedOrigins = cfg.CORSAllowedOrigins
	if cfg.AuthEnabled() {
		routerCfg.Tokens = middleware.HMACValidator(cfg.JWTSecret)
	}

	// HTTP router.
	router := handler.NewRouter(storefront, healthHandler, logger, routerCfg)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openSubstrate connects the configured state store. Connections it opens
// are kept on a so they can be closed on failure or shutdown.
func (a *App) openSubstrate(ctx context.Context) (storage.KV, error) {
	cfg := a.cfg
	tracer := database.QueryTracer{SlowThreshold: slowQueryThreshold, Logger: a.logger}

	switch cfg.StorageBackend {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return storage.NewRedisKV(rdb, cfg.StateTTL(), tracer), nil

	case config.StoragePostgres:
		pgCfg := database.DefaultPostgresConfig(cfg.PostgresDSN())
		pgCfg.MaxConns = cfg.DBMaxConns
		pool, err := database.ConnectPostgres(ctx, pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool

		if err := storage.Migrate(ctx, pool, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		if err := prometheus.Register(database.NewPoolCollector(pool, "storefront")); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, fmt.Errorf("register pool metrics: %w", err)
			}
		}

		kv := storage.NewPostgresKV(pool, cfg.StateTTL(), tracer)
		a.purger = kv
		return kv, nil

	default:
		a.logger.Warn("using in-memory state store; carts are lost on restart")
		return storage.NewMemoryKV(), nil
	}
}

func (a *App) breakerConfig(name string) httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  a.cfg.CBMaxRequests,
		Interval:     time.Duration(a.cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(a.cfg.CBTimeout) * time.Second,
		FailureRatio: a.cfg.CBFailureRatio,
		MinRequests:  a.cfg.CBMinRequests,
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	idle := a.cfg.SessionIdle()
	go a.sessions.RunSweeper(bgCtx, idle/2, idle)
	if a.purger != nil {
		go a.runPurger(bgCtx)
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("storage", a.cfg.StorageBackend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// runPurger deletes expired rows so the state table does not grow without
// bound. Reads already ignore them.
func (a *App) runPurger(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.purger.Purge(ctx)
			if err != nil {
				a.logger.Error("purge expired state failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				a.logger.Info("purged expired state", slog.Int64("rows", n))
			}
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.closeSubstrate()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeSubstrate() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
