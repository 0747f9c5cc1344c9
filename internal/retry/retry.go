// Package retry implements the fixed-backoff retry policy used around page
// opens and the authentication sequence.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted is returned by Policy.Do once every attempt has failed. It is
// an ordinary error value, so callers decide whether exhaustion aborts the
// current record or propagates further.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy retries an action a bounded number of times with a fixed delay
// between attempts.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is
// cancelled. Each failed attempt is logged at WARN with its index; exhaustion
// is logged at ERROR and reported as ErrExhausted wrapping the last failure.
func (p Policy) Do(ctx context.Context, log *slog.Logger, label string, fn func() error) error {
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("retry policy for %s has no attempts", label)
	}

	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = fn()
		if last == nil {
			if attempt > 1 {
				log.InfoContext(ctx, "action succeeded after retries",
					"tag", "INFO-10", "action", label, "attempt", attempt)
			}
			return nil
		}

		log.WarnContext(ctx, "attempt failed",
			"tag", "WARN-01", "action", label,
			"attempt", attempt, "max_attempts", p.MaxAttempts, "err", last)

		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.ErrorContext(ctx, "action failed after all attempts",
		"tag", "ERR-01", "action", label, "max_attempts", p.MaxAttempts, "err", last)
	return fmt.Errorf("%s: %w: %w", label, ErrExhausted, last)
}
