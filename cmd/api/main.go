package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-tour/internal/api"
	"github.com/noah-isme/backend-tour/internal/booking"
	"github.com/noah-isme/backend-tour/internal/config"
	"github.com/noah-isme/backend-tour/internal/confirmation"
	"github.com/noah-isme/backend-tour/internal/discount"
	"github.com/noah-isme/backend-tour/internal/events"
	"github.com/noah-isme/backend-tour/internal/health"
	"github.com/noah-isme/backend-tour/internal/inventory"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/payment"
	"github.com/noah-isme/backend-tour/internal/ratelimit"
)

const metricsNamespace = "tour"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "tour-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Redis is optional. Without it every store is in-memory, which only
	// holds for a single process.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set, using in-memory stores")
	}

	var invStore inventory.Store
	var registry confirmation.Registry
	var discountStore discount.Store
	if redisClient != nil {
		invStore = inventory.NewRedisStore(redisClient)
		registry = confirmation.RedisRegistry{R: redisClient}
		discountStore = discount.NewRedisStore(redisClient)
	} else {
		invStore = inventory.NewMemoryStore()
		registry = confirmation.NewMemoryRegistry()
		discountStore = discount.NewMemoryStore()
	}

	gateway := &payment.ResilientGateway{
		Inner:  payment.StaticGateway{},
		Logger: logger,
	}

	eventLog := events.NewMemoryLog()
	svc := &booking.Service{
		Ledger:    inventory.NewLedger(invStore),
		Discounts: &discount.Service{Store: discountStore},
		Codes: confirmation.Issuer{
			Gen: confirmation.RandomGenerator{},
			Reg: registry,
		},
		Gateway: gateway,
		Store:   booking.NewMemoryStore(),
		Events: &events.Bus{
			Log:       eventLog,
			Notifiers: []events.Notifier{events.MetricsNotifier{}},
		},
		TaxRate: cfg.TaxRate,
	}

	limiter, err := ratelimit.New(redisClient, cfg.RateLimitPerMinute)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	httpMetrics := obs.NewHTTPMetrics(metricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)

	router := api.NewRouter(api.RouterConfig{
		Handler:        &api.Handler{Svc: svc, Audit: eventLog},
		Health:         health.Handler{Checker: readinessChecker{redis: redisClient}},
		Logger:         logger,
		Metrics:        httpMetrics,
		RateLimit:      ratelimit.Middleware(limiter),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: otelhttp.NewHandler(router, "tour-api"),
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	health.SetReady(false)
	logger.Info().Msg("draining connections")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

type readinessChecker struct {
	redis *redis.Client
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
