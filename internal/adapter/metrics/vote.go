package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoteMetrics tracks vote admission outcomes.
type VoteMetrics struct {
	VotesCast         *prometheus.CounterVec
	AdmissionDuration prometheus.Histogram
}

func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Total number of vote requests, by outcome.",
		}, []string{"result"}),
		AdmissionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vote_admission_duration_seconds",
			Help:      "Duration of vote admission including storage round-trips.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	reg.MustRegister(m.VotesCast, m.AdmissionDuration)
	return m
}

// SubmissionMetrics tracks photo submission outcomes.
type SubmissionMetrics struct {
	Submissions *prometheus.CounterVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of photo submissions, by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Submissions)
	return m
}

// ReconcileMetrics tracks tally reconciliation runs.
type ReconcileMetrics struct {
	Runs          prometheus.Counter
	DriftDetected prometheus.Counter
	DriftRepaired prometheus.Counter
}

func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	m := &ReconcileMetrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total number of tally reconciliation runs.",
		}),
		DriftDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "drift_detected_total",
			Help:      "Photos whose stored tally differed from their voter records.",
		}),
		DriftRepaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "drift_repaired_total",
			Help:      "Photos whose stored tally was rewritten from voter records.",
		}),
	}

	reg.MustRegister(m.Runs, m.DriftDetected, m.DriftRepaired)
	return m
}
