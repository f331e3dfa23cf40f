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
	"github.com/pscheid92/photocontest/internal/adapter/filestore"
	"github.com/pscheid92/photocontest/internal/adapter/httpserver"
	"github.com/pscheid92/photocontest/internal/adapter/memory"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/adapter/postgres"
	"github.com/pscheid92/photocontest/internal/adapter/redis"
	"github.com/pscheid92/photocontest/internal/app"
	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/pscheid92/photocontest/internal/platform/config"
	"github.com/pscheid92/photocontest/internal/platform/logging"
	"github.com/pscheid92/photocontest/internal/platform/retry"
	"github.com/pscheid92/photocontest/internal/platform/version"
	goredis "github.com/redis/go-redis/v9"
)

const (
	startupTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

type storage struct {
	photos  domain.PhotoRepository
	voters  domain.VoterRepository
	checks  []httpserver.HealthCheck
	closers []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func connectPolicy(target string, clock clockwork.Clock) retry.Policy {
	return retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Connection attempt failed, retrying", "target", target, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

func setupDB(ctx context.Context, cfg *config.Config, clock clockwork.Clock, m *metrics.StorageMetrics) *pgxpool.Pool {
	pool, err := retry.Do(ctx, connectPolicy("postgres", clock), retry.Always, func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL, m)
	})
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

func setupRedis(ctx context.Context, cfg *config.Config, clock clockwork.Clock, m *metrics.StorageMetrics) *goredis.Client {
	client, err := retry.Do(ctx, connectPolicy("redis", clock), retry.Always, func(ctx context.Context) (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL, m)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// setupStorage picks PostgreSQL when DATABASE_URL is set and the in-memory store
// otherwise. REDIS_URL moves voter records to Redis in either case.
func setupStorage(cfg *config.Config, clock clockwork.Clock, m *metrics.StorageMetrics) *storage {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st := &storage{}
	var photoCheck, voterCheck httpserver.HealthCheck

	if cfg.DatabaseURL != "" {
		pool := setupDB(ctx, cfg, clock, m)
		st.photos = postgres.NewPhotoRepo(pool)
		st.voters = postgres.NewVoterRepo(pool)
		photoCheck = httpserver.HealthCheck{Component: "photo_store", Backend: "postgres", Check: pool.Ping}
		voterCheck = httpserver.HealthCheck{Component: "voter_store", Backend: "postgres", Check: pool.Ping}
		st.closers = append(st.closers, pool.Close)
	} else {
		slog.Warn("DATABASE_URL not set, photos and votes are kept in memory only")
		store := memory.NewStore(clock)
		st.photos = store
		st.voters = store
		photoCheck = httpserver.HealthCheck{Component: "photo_store", Backend: "memory"}
		voterCheck = httpserver.HealthCheck{Component: "voter_store", Backend: "memory"}
	}

	if cfg.RedisURL != "" {
		client := setupRedis(ctx, cfg, clock, m)
		st.voters = redis.NewVoterStore(client)
		voterCheck = httpserver.HealthCheck{
			Component: "voter_store",
			Backend:   "redis",
			Check:     func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		slog.Info("Voter records stored in Redis")
	}

	st.checks = []httpserver.HealthCheck{photoCheck, voterCheck}
	return st
}

func setupUploads(cfg *config.Config) *filestore.Store {
	uploads, err := filestore.New(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	return uploads
}

func runGracefulShutdown(srv *httpserver.Server, reconciler *app.TallyReconciler) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		if reconciler != nil {
			reconciler.Stop()
		}

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
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	reg := metrics.NewRegistry()
	storageMetrics := metrics.NewStorageMetrics(reg)

	st := setupStorage(cfg, clock, storageMetrics)
	defer st.Close()

	uploads := setupUploads(cfg)

	appSvc := app.NewService(st.photos, st.voters, uploads, cfg.SubmissionRules(), clock).
		WithMetrics(metrics.NewVoteMetrics(reg), metrics.NewSubmissionMetrics(reg))

	var reconciler *app.TallyReconciler
	if cfg.ReconcileInterval > 0 {
		reconciler = app.NewTallyReconciler(st.photos, st.voters, cfg.ReconcileInterval, false, clock, metrics.NewReconcileMetrics(reg))
		go reconciler.Start(context.Background())
	}

	srv := httpserver.NewServer(cfg, appSvc,
		httpserver.WithMetrics(metrics.NewHTTPMetrics(reg), metrics.Handler(reg)),
		httpserver.WithHealthChecks(st.checks...),
	)

	done := runGracefulShutdown(srv, reconciler)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
