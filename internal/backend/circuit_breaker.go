package backend

import (
	"context"
	stderrors "errors"
	"fmt"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/observability"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards calls to one backend endpoint
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

// NewCircuitBreaker creates a breaker for endpoint, or nil when disabled.
// A nil *CircuitBreaker executes calls directly.
func NewCircuitBreaker(endpoint string, cfg config.CircuitBreakerConfig, logger *errors.Logger, metrics *observability.Metrics) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("backend%s", endpoint),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// A busy backend answering 429 is healthy, and so is a call the user abandoned.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.IsRateLimit(err) ||
				stderrors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
			metrics.RecordBreakerTransition(context.Background(), name, to.String())
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

// Execute runs fn under breaker protection. Rejections while open or
// half-open saturated become CIRCUIT_OPEN transport errors.
func (b *CircuitBreaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	body, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewTransportError(errors.ErrCodeCircuitOpen,
			"backend temporarily unavailable", err).
			WithContext("breaker", b.cb.Name())
	}
	return body, err
}

// GetStats returns circuit breaker statistics
func (b *CircuitBreaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *CircuitBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
