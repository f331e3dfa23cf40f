package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/pscheid92/photocontest/internal/platform/config"
)

type appService interface {
	SubmitPhoto(ctx context.Context, req domain.SubmitPhotoRequest) (*domain.Photo, error)
	ListPhotos(ctx context.Context) ([]domain.Photo, error)
	GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error)
	CastVote(ctx context.Context, identity, photoID string) (int64, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	app    appService

	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics serves metricsHandler on /metrics and records request metrics.
func WithMetrics(httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler) Option {
	return func(s *Server) {
		s.httpMetrics = httpMetrics
		s.metricsHandler = metricsHandler
	}
}

// WithHealthChecks sets the checks run by the readiness probe.
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func NewServer(cfg *config.Config, app appService, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
