package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/domain"
)

// TallyDrift is a photo whose stored tally differs from the number of voters who voted for it.
type TallyDrift struct {
	PhotoID  string
	Stored   int64
	Expected int64
}

// ReconcileReport summarizes one reconciliation pass. Deferred counts drift seen for the
// first time, which is left alone until the next pass confirms it.
type ReconcileReport struct {
	Checked  int
	Drift    []TallyDrift
	Deferred int
	Repaired int
}

// TallyReconciler recomputes photo tallies from voter records and repairs drift left by
// votes whose counter increment failed. Voter records are never modified.
//
// A vote between its voter write and its increment looks exactly like a failed increment.
// Drift is therefore only repaired once two consecutive passes observe the same stored and
// expected values, and the repair is a compare-and-set against the stored value.
type TallyReconciler struct {
	photos   domain.PhotoRepository
	voters   domain.VoterRepository
	interval time.Duration
	dryRun   bool
	clock    clockwork.Clock
	metrics  *metrics.ReconcileMetrics
	stopCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	pending map[string]TallyDrift
}

// NewTallyReconciler creates a reconciler. With dryRun set, drift is only reported.
// m may be nil.
func NewTallyReconciler(photos domain.PhotoRepository, voters domain.VoterRepository, interval time.Duration, dryRun bool, clock clockwork.Clock, m *metrics.ReconcileMetrics) *TallyReconciler {
	return &TallyReconciler{
		photos:   photos,
		voters:   voters,
		interval: interval,
		dryRun:   dryRun,
		clock:    clock,
		metrics:  m,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]TallyDrift),
	}
}

// Start runs the reconciliation loop until Stop is called or ctx is cancelled.
func (r *TallyReconciler) Start(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("Tally reconciler started", "interval", r.interval.String(), "dry_run", r.dryRun)
	for {
		select {
		case <-ticker.Chan():
			if _, err := r.Reconcile(ctx); err != nil {
				slog.Error("Tally reconciliation failed", "error", err)
			}
		case <-r.stopCh:
			slog.Info("Tally reconciler stopped")
			return
		case <-ctx.Done():
			slog.Info("Tally reconciler context cancelled")
			return
		}
	}
}

// Stop ends the reconciliation loop. Safe to call more than once.
func (r *TallyReconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Reconcile performs one pass. Votes recorded for photos that no longer exist are ignored.
func (r *TallyReconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Runs.Inc()
	}

	photos, err := r.photos.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("failed to list photos: %w", err)
	}
	counts, err := r.voters.CountVotesByPhoto(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("failed to count voter records: %w", err)
	}

	previous := r.pending
	r.pending = make(map[string]TallyDrift)

	report := ReconcileReport{Checked: len(photos)}
	for _, p := range photos {
		expected := counts[p.ID]
		if p.Votes == expected {
			continue
		}

		drift := TallyDrift{PhotoID: p.ID, Stored: p.Votes, Expected: expected}
		report.Drift = append(report.Drift, drift)
		if r.metrics != nil {
			r.metrics.DriftDetected.Inc()
		}
		slog.WarnContext(ctx, "Tally drift detected", "photo_id", p.ID, "stored", p.Votes, "expected", expected)

		if r.dryRun {
			continue
		}
		if previous[p.ID] != drift {
			r.pending[p.ID] = drift
			report.Deferred++
			continue
		}
		if r.repair(ctx, drift) {
			report.Repaired++
		}
	}

	return report, nil
}

func (r *TallyReconciler) repair(ctx context.Context, drift TallyDrift) bool {
	swapped, err := r.photos.CompareAndSetVotes(ctx, drift.PhotoID, drift.Stored, drift.Expected)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to repair tally", "photo_id", drift.PhotoID, "error", err)
		return false
	}
	if !swapped {
		slog.InfoContext(ctx, "Tally changed since last pass, repair skipped", "photo_id", drift.PhotoID)
		return false
	}
	if r.metrics != nil {
		r.metrics.DriftRepaired.Inc()
	}
	return true
}
