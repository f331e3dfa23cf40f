package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
)

// MetricsTracer implements pgx.QueryTracer to record query durations and errors.
type MetricsTracer struct {
	metrics *metrics.StorageMetrics
}

var _ pgx.QueryTracer = (*MetricsTracer)(nil)

func NewMetricsTracer(m *metrics.StorageMetrics) *MetricsTracer {
	return &MetricsTracer{metrics: m}
}

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	queryName string
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{
		startTime: time.Now(),
		queryName: extractQueryName(data.SQL),
	})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	t.metrics.DBQueryDuration.WithLabelValues(qctx.queryName).Observe(time.Since(qctx.startTime).Seconds())
	if data.Err != nil {
		t.metrics.DBErrors.WithLabelValues(qctx.queryName).Inc()
	}
}

// extractQueryName returns the leading SQL keyword, keeping label cardinality low.
func extractQueryName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToUpper(fields[0])
}
