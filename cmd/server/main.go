package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/swamyhotfoods/shopfront/internal/adapter/httpserver"
	"github.com/swamyhotfoods/shopfront/internal/adapter/metrics"
	"github.com/swamyhotfoods/shopfront/internal/adapter/places"
	"github.com/swamyhotfoods/shopfront/internal/adapter/postgres"
	"github.com/swamyhotfoods/shopfront/internal/adapter/redis"
	"github.com/swamyhotfoods/shopfront/internal/adapter/websocket"
	"github.com/swamyhotfoods/shopfront/internal/app"
	"github.com/swamyhotfoods/shopfront/internal/broadcast"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	"github.com/swamyhotfoods/shopfront/internal/platform/config"
	"github.com/swamyhotfoods/shopfront/internal/platform/logging"
	"github.com/swamyhotfoods/shopfront/internal/platform/version"
	"github.com/swamyhotfoods/shopfront/internal/reviews"
	"github.com/swamyhotfoods/shopfront/internal/status"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) *pgxpool.Pool {
	tracer := postgres.NewMetricsTracer(metrics.NewDBMetrics(reg))

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, tracer)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis returns nil when REDIS_URL is unset; reviews are then cached in memory only.
func setupRedis(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, shared reviews cache disabled")
		return nil
	}

	redisMetrics := metrics.NewRedisMetrics(reg)
	client, err := redis.NewClient(ctx, cfg.RedisURL,
		redis.NewMetricsHook(redisMetrics),
		redis.NewCircuitBreakerHook(redisMetrics),
	)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupReviews(cfg *config.Config, redisClient *goredis.Client, clock clockwork.Clock, reg prometheus.Registerer) *reviews.Service {
	var source domain.ReviewsSource
	if cfg.ReviewsEnabled() {
		source = places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.PlaceID, places.WithClock(clock))
	} else {
		slog.Warn("PLACES_API_KEY or PLACE_ID not set, reviews endpoint disabled")
	}

	var shared domain.ReviewsCache
	if redisClient != nil && cfg.ReviewsEnabled() {
		shared = redis.NewReviewsCache(redisClient, cfg.PlaceID)
	}

	return reviews.NewService(source, shared, cfg.ReviewsCacheTTL, clock, metrics.NewCacheMetrics(reg))
}

func runGracefulShutdown(srv *httpserver.Server, broadcaster *broadcast.Broadcaster) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// Close websockets first; hijacked connections are not tracked by the HTTP server.
		broadcaster.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	v := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", v.Version, "commit", v.Commit)

	reg := metrics.NewRegistry()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool := setupDB(startupCtx, cfg, reg)
	defer pool.Close()

	redisClient := setupRedis(startupCtx, cfg, reg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: postgres.HealthCheck(pool)},
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, httpserver.HealthCheck{Name: "redis", Check: redis.HealthCheck(redisClient)})
	}

	menuSvc := app.NewMenuService(postgres.NewMenuRepo(pool))
	reviewsSvc := setupReviews(cfg, redisClient, clock, reg)

	store := status.NewStore(clock, cfg.ShopSchedule().Message)
	broadcaster := broadcast.NewBroadcaster(store, clock, cfg.MaxWebSocketConnections, cfg.StatusRefreshInterval,
		metrics.NewWebSocketMetrics(reg), metrics.NewStatusMetrics(reg))

	origins := websocket.NewOriginPolicy(cfg.AllowedOrigins(), cfg.CORSAllowedSuffix)

	srv, err := httpserver.NewServer(cfg, httpserver.Dependencies{
		Menu:             menuSvc,
		Status:           broadcaster,
		Reviews:          reviewsSvc,
		Origins:          origins,
		WebsocketHandler: websocket.NewHandler(broadcaster, origins),
		MetricsHandler:   metrics.Handler(reg),
		HTTPMetrics:      metrics.NewHTTPMetrics(reg),
		HealthChecks:     healthChecks,
	})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, broadcaster)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
