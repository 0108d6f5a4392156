package feed

import (
	"context"
	"fmt"
	"time"
)

// fetchWithRetries runs fetchFunc with exponential backoff. Used for the
// initial fetch on Start; the steady-state ticker calls FetchNow once per
// tick instead, since backoff longer than the refresh interval would only
// pile up overlapping attempts.
func fetchWithRetries(ctx context.Context, source *BaseSource, fetchFunc func(context.Context) error) error {
	const maxRetries = 3
	const initialBackoff = 200 * time.Millisecond
	const maxBackoff = 2 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-source.StopChan():
			return fmt.Errorf("%w", ErrSourceStopped)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fetchFunc(ctx)
		if err == nil {
			source.SetHealthy(true)
			return nil
		}

		lastErr = err
		source.Logger().Warn("Fetch attempt failed",
			"source", source.Name(),
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt == maxRetries {
			break
		}

		// #nosec G115 -- attempt is always positive (1 to maxRetries)
		backoff := initialBackoff * time.Duration(1<<uint(attempt-1))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		select {
		case <-time.After(backoff):
		case <-source.StopChan():
			return fmt.Errorf("%w", ErrSourceStopped)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	source.SetHealthy(false)
	return lastErr
}

// runRefreshLoop drives the steady-state ticker loop shared by all sources.
func runRefreshLoop(ctx context.Context, source *BaseSource, interval time.Duration, fetchFunc func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-source.StopChan():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fetchFunc(ctx); err != nil {
				source.SetHealthy(false)
				source.Logger().Warn("Refresh failed",
					"source", source.Name(), "error", err)
			} else {
				source.SetHealthy(true)
			}
		}
	}
}
