package backend

import (
	"interviewprep/internal/config"
	"interviewprep/internal/errors"

	"golang.org/x/time/rate"
)

// outboundLimiter throttles calls leaving this process. It never waits:
// a call over budget fails immediately so the user decides when to retry.
type outboundLimiter struct {
	limiter *rate.Limiter
}

func newOutboundLimiter(cfg config.RateLimitConfig) *outboundLimiter {
	if !cfg.Enabled || cfg.RequestsPerMin <= 0 {
		return nil
	}
	burst := cfg.BurstCapacity
	if burst <= 0 {
		burst = 1
	}
	return &outboundLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), burst),
	}
}

func (l *outboundLimiter) reserve(endpoint string) error {
	if l == nil || l.limiter.Allow() {
		return nil
	}
	return errors.NewRateLimitError(errors.ErrCodeClientThrottled,
		"too many requests, slow down", nil).
		WithContext("endpoint", endpoint)
}
