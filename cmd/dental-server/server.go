package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dentalchart/dentalchart/internal/config"
	"github.com/dentalchart/dentalchart/internal/domain/dentalchart"
	"github.com/dentalchart/dentalchart/internal/domain/notation"
	"github.com/dentalchart/dentalchart/internal/domain/treatment"
	"github.com/dentalchart/dentalchart/internal/platform/auth"
	"github.com/dentalchart/dentalchart/internal/platform/db"
	"github.com/dentalchart/dentalchart/internal/platform/fhir"
	"github.com/dentalchart/dentalchart/internal/platform/metrics"
	"github.com/dentalchart/dentalchart/internal/platform/middleware"
)

const version = "0.1.0"

func newLogger(env, level string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		logger = logger.Level(lvl)
	}
	return logger
}

// serverDeps is everything the router needs. Tenancy and the health check are
// injected so the router can be built without a database.
type serverDeps struct {
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	tenancy    echo.MiddlewareFunc
	dbHealth   echo.HandlerFunc
	chart      *dentalchart.Service
	treatments *treatment.Service
}

func newRouter(cfg *config.Config, deps serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(deps.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(deps.logger))
	e.Use(deps.metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Tenant-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	if deps.dbHealth != nil {
		e.GET("/health/db", deps.dbHealth)
	}
	if cfg.MetricsEnabled && deps.metrics != nil {
		e.GET("/metrics", deps.metrics.Handler())
	}

	// Capability discovery is public and needs no tenant connection.
	e.GET("/fhir/metadata", func(c echo.Context) error {
		return c.JSON(http.StatusOK, fhir.NewCapabilityStatement(fhir.CSResource{
			Type:        "BodyStructure",
			Interaction: []fhir.CSInteraction{{Code: "search-type"}},
			SearchParam: []fhir.CSSearchParam{{Name: "patient", Type: "reference"}},
		}))
	})

	var authn echo.MiddlewareFunc
	if cfg.IsDev() && cfg.JWTSecret == "" {
		authn = auth.DevAuthMiddleware()
	} else {
		authn = auth.JWTMiddleware(auth.JWTConfig{SigningKey: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer})
	}

	rl := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	limiter := middleware.RateLimit(rl)

	apiMW := []echo.MiddlewareFunc{authn, limiter, middleware.RequestTimeout(15 * time.Second)}
	if deps.tenancy != nil {
		apiMW = append(apiMW, deps.tenancy)
	}
	apiV1 := e.Group("/api/v1", apiMW...)
	fhirGroup := e.Group("/fhir", apiMW...)

	notation.NewHandler(deps.metrics).RegisterRoutes(apiV1)
	dentalchart.NewHandler(deps.chart).RegisterRoutes(apiV1, fhirGroup)
	treatment.NewHandler(deps.treatments).RegisterRoutes(apiV1)

	return e
}

func newRedisCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*dentalchart.RedisCache, func()) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, chart cache disabled")
		return nil, func() {}
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid REDIS_URL, chart cache disabled")
		return nil, func() {}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, chart cache disabled")
		_ = client.Close()
		return nil, func() {}
	}
	logger.Info().Msg("connected to redis")
	ttl := time.Duration(cfg.ChartCacheTTL) * time.Second
	return dentalchart.NewRedisCache(client, ttl), func() { _ = client.Close() }
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	m := metrics.New()

	chartSvc := dentalchart.NewService(dentalchart.NewToothStatusRepoPG(pool))
	chartSvc.SetMetrics(m)
	chartSvc.SetLogger(logger.With().Str("component", "dentalchart").Logger())
	cache, closeCache := newRedisCache(ctx, cfg, logger)
	defer closeCache()
	if cache != nil {
		chartSvc.SetCache(cache)
	}

	treatmentSvc := treatment.NewService(treatment.NewTreatmentRepoPG(pool))
	treatmentSvc.SetMetrics(m)
	treatmentSvc.SetLogger(logger.With().Str("component", "treatment").Logger())

	e := newRouter(cfg, serverDeps{
		logger:     logger,
		metrics:    m,
		tenancy:    db.TenantMiddleware(pool, cfg.DefaultTenant),
		dbHealth:   db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }),
		chart:      chartSvc,
		treatments: treatmentSvc,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
