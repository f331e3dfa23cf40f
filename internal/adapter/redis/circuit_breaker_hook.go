package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const breakerName = "redis"

// CircuitBreakerHook implements redis.Hook so every command, pipeline and dial passes
// through one circuit breaker. While open, commands fail fast with gobreaker.ErrOpenState
// instead of waiting on an unavailable server.
type CircuitBreakerHook struct {
	cb *gobreaker.CircuitBreaker
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// NewCircuitBreakerHook trips after at least 5 requests with a 60% failure rate in a
// 10s window, and probes again after 30s. m may be nil.
func NewCircuitBreakerHook(m *metrics.StorageMetrics) *CircuitBreakerHook {
	return newCircuitBreakerHook(gobreaker.Settings{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	}, m)
}

func newCircuitBreakerHook(settings gobreaker.Settings, m *metrics.StorageMetrics) *CircuitBreakerHook {
	settings.Name = breakerName
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, goredis.Nil)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
		if m != nil {
			m.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			m.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		}
	}
	return &CircuitBreakerHook{cb: gobreaker.NewCircuitBreaker(settings)}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := h.cb.Execute(func() (any, error) {
			return next(ctx, network, addr)
		})
		if err != nil {
			return nil, breakerErr(err)
		}
		return conn.(net.Conn), nil
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		_, err := h.cb.Execute(func() (any, error) {
			return nil, next(ctx, cmd)
		})
		if isRejected(err) {
			cmd.SetErr(breakerErr(err))
			return cmd.Err()
		}
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		_, err := h.cb.Execute(func() (any, error) {
			return nil, next(ctx, cmds)
		})
		if isRejected(err) {
			err = breakerErr(err)
			for _, cmd := range cmds {
				cmd.SetErr(err)
			}
		}
		return err
	}
}

// isRejected reports whether the breaker refused the call without running it.
func isRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func breakerErr(err error) error {
	if isRejected(err) {
		return fmt.Errorf("redis circuit breaker open: %w", err)
	}
	return err
}

// GetState returns the current breaker state.
func (h *CircuitBreakerHook) GetState() gobreaker.State {
	return h.cb.State()
}

// GetCounts returns the request counts of the current window.
func (h *CircuitBreakerHook) GetCounts() gobreaker.Counts {
	return h.cb.Counts()
}
