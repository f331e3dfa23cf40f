// Command reconcile-tallies recomputes photo vote tallies from voter records and
// rewrites the ones that drifted.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/photocontest/internal/adapter/postgres"
	"github.com/pscheid92/photocontest/internal/adapter/redis"
	"github.com/pscheid92/photocontest/internal/app"
	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/pscheid92/photocontest/internal/platform/logging"
)

const runTimeout = 10 * time.Minute

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "PostgreSQL URL (or set DATABASE_URL env)")
		redisURL    = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL when voter records live in Redis (or set REDIS_URL env)")
		dryRun      = flag.Bool("dry-run", false, "Dry run mode (report drift, don't write)")
		settle      = flag.Duration("settle", 5*time.Second, "Wait between the detecting and the confirming pass")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Database URL required (--database or DATABASE_URL env)")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.InitLogger(level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, *databaseURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	slog.Info("Connected to database", "url", sanitizeURL(*databaseURL))

	var voters domain.VoterRepository = postgres.NewVoterRepo(pool)
	if *redisURL != "" {
		client, err := redis.NewClient(ctx, *redisURL, nil)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		voters = redis.NewVoterStore(client)
		slog.Info("Reading voter records from Redis", "url", sanitizeURL(*redisURL))
	}

	start := time.Now()
	clock := clockwork.NewRealClock()
	reconciler := app.NewTallyReconciler(postgres.NewPhotoRepo(pool), voters, 0, *dryRun, clock, nil)
	report, err := reconciler.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	// Drift is only repaired when a second pass sees it unchanged.
	if report.Deferred > 0 {
		slog.Info("Drift found, confirming after settle period", "deferred", report.Deferred, "settle", settle.String())
		clock.Sleep(*settle)
		report, err = reconciler.Reconcile(ctx)
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}
	}

	slog.Info("Reconciliation summary",
		"dry_run", *dryRun,
		"checked", report.Checked,
		"drifted", len(report.Drift),
		"deferred", report.Deferred,
		"repaired", report.Repaired,
		"duration_ms", time.Since(start).Milliseconds())

	if failed := len(report.Drift) - report.Repaired - report.Deferred; !*dryRun && failed > 0 {
		slog.Warn("Some tallies could not be repaired", "failed", failed)
		os.Exit(1)
	}
}

// sanitizeURL hides the password of a connection URL for logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
