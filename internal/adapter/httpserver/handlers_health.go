package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/photocontest/internal/platform/version"
	"golang.org/x/sync/errgroup"
)

const readinessProbeTimeout = 5 * time.Second

// HealthCheck probes the backend behind one store. Component names the store as the API
// sees it ("photo_store", "voter_store"), Backend the technology serving it. A nil Check
// always passes, which is how in-process stores report.
type HealthCheck struct {
	Component string
	Backend   string
	Check     func(ctx context.Context) error
}

type componentStatus struct {
	Backend string `json:"backend"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

// handleReadiness probes every store concurrently and reports each one, so a voter store
// outage is distinguishable from a photo store outage.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	statuses := make([]componentStatus, len(s.healthChecks))
	var g errgroup.Group
	for i, hc := range s.healthChecks {
		g.Go(func() error {
			statuses[i] = probe(ctx, hc)
			return nil
		})
	}
	_ = g.Wait()

	response := readinessResponse{Status: "ready", Components: make(map[string]componentStatus, len(statuses))}
	code := http.StatusOK
	for i, hc := range s.healthChecks {
		response.Components[hc.Component] = statuses[i]
		if statuses[i].Status != "ok" {
			response.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	if err := c.JSON(code, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func probe(ctx context.Context, hc HealthCheck) componentStatus {
	status := componentStatus{Backend: hc.Backend, Status: "ok"}
	if hc.Check == nil {
		return status
	}
	if err := hc.Check(ctx); err != nil {
		status.Status = "down"
		status.Error = err.Error()
	}
	return status
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
