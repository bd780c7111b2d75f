package scoring

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"pokertable.io/server/logging"
	"pokertable.io/server/poker"
)

var retryLogger = logging.GetZeroLogger("scoring::retry", nil)

// RetryScorer retries a failing scorer up to a fixed number of attempts,
// at most one attempt per interval, each bounded by timeout.
type RetryScorer struct {
	scorer   Scorer
	attempts int
	interval time.Duration
	timeout  time.Duration
}

func NewRetryScorer(scorer Scorer, attempts int, interval time.Duration, timeout time.Duration) *RetryScorer {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryScorer{
		scorer:   scorer,
		attempts: attempts,
		interval: interval,
		timeout:  timeout,
	}
}

func (r *RetryScorer) Score(ctx context.Context, cards []poker.Card) (Result, error) {
	limit := rate.Inf
	if r.interval > 0 {
		limit = rate.Every(r.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	var lastErr error
	attempt := 0
	for attempt < r.attempts {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		attempt++
		result, err := r.scoreOnce(ctx, cards)
		if err == nil {
			return result, nil
		}
		lastErr = err
		retryLogger.Warn().
			Int("attempt", attempt).
			Str("hand", poker.JoinCards(cards)).
			Msgf("Scoring attempt failed: %v", err)
	}
	return Result{}, UnavailableError{Attempts: attempt, Cause: lastErr}
}

func (r *RetryScorer) scoreOnce(ctx context.Context, cards []poker.Card) (Result, error) {
	if r.timeout <= 0 {
		return r.scorer.Score(ctx, cards)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.scorer.Score(attemptCtx, cards)
}
