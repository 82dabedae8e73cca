package collector

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"
)

// rateGuard blocks the calling goroutine when the API reports an
// exhausted quota. The clock and sleep functions are swappable so
// tests never actually wait.
type rateGuard struct {
	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func newRateGuard(logger *zap.Logger) *rateGuard {
	return &rateGuard{
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// waitForReset inspects err for rate-limit exhaustion. On a primary
// limit it sleeps until one second past the reported reset time, on a
// secondary limit for the advertised retry delay, then reports true so
// the caller can retry once. Errors without rate-limit metadata never
// sleep.
func (g *rateGuard) waitForReset(ctx context.Context, err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		delay := g.resetDelay(rateErr.Rate.Reset.Time)
		g.logger.Warn("rate limit hit, sleeping until reset",
			zap.Time("reset", rateErr.Rate.Reset.Time),
			zap.Duration("sleep", delay))
		return g.sleep(ctx, delay) == nil
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		delay := abuseErr.GetRetryAfter()
		if delay <= 0 {
			delay = time.Second
		}
		g.logger.Warn("secondary rate limit hit, backing off",
			zap.Duration("sleep", delay))
		return g.sleep(ctx, delay) == nil
	}

	return false
}

// resetDelay computes reset - now + 1s, clamped at zero for reset
// times already in the past.
func (g *rateGuard) resetDelay(reset time.Time) time.Duration {
	d := reset.Sub(g.now()) + time.Second
	if d < 0 {
		return 0
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
