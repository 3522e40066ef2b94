package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrUnavailable indicates the circuit breaker is open and calls are being rejected.
var ErrUnavailable = errors.New("gemini: service unavailable")

// guard bounds remote calls with a rate limiter, a circuit breaker and a timeout.
type guard struct {
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

func newGuard(name string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *guard {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
		burst = max(1, requestsPerMinute/10)
	}

	g := &guard{
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		logger:  logger,
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about service health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

// do waits for a rate limit token and runs fn under the breaker.
func (g *guard) do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gemini: rate limit wait: %w", err)
	}

	result, err := g.breaker.Execute(func() (any, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return result, err
}
