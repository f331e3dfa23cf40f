package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// RejectionReasonKey is the echo context key under which the error middleware leaves the
// rejection reason of a failed request.
const RejectionReasonKey = "rejection_reason"

// HTTPMetrics tracks API traffic: latency and volume per route, rejections per
// reason and the size of photo uploads.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	UploadBytes     *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds by route.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests.",
		}, []string{"method", "route", "status_code"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rejections_total",
			Help:      "API requests answered with an error, by rejection reason.",
		}, []string{"route", "reason"}),
		UploadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "upload_size_bytes",
			Help:      "Declared size of photo submission bodies.",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
		}, []string{"route"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of API requests currently being processed.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.Rejections, m.UploadBytes, m.InFlightGauge)
	return m
}

// instrumented reports whether route belongs to the API. Operational endpoints and
// static uploads are not measured.
func instrumented(route string) bool {
	return route != "/metrics" &&
		!strings.HasPrefix(route, "/health/") &&
		!strings.HasPrefix(route, "/uploads")
}

// Middleware records request metrics labelled by route pattern. Rejections are read
// from RejectionReasonKey, so it must wrap the error middleware.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if !instrumented(route) {
				return next(c)
			}

			req := c.Request()
			if req.Method == http.MethodPost && req.ContentLength > 0 {
				m.UploadBytes.WithLabelValues(route).Observe(float64(req.ContentLength))
			}

			m.InFlightGauge.Inc()
			defer m.InFlightGauge.Dec()

			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
				status := strconv.Itoa(c.Response().Status)
				m.RequestDuration.WithLabelValues(req.Method, route, status).Observe(v)
				m.RequestsTotal.WithLabelValues(req.Method, route, status).Inc()
			}))

			err := next(c)
			timer.ObserveDuration()

			if reason, ok := c.Get(RejectionReasonKey).(string); ok {
				m.Rejections.WithLabelValues(route, reason).Inc()
			}
			return err
		}
	}
}
