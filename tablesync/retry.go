package tablesync

import (
	"context"
	"errors"
	"time"

	"github.com/relloyd/tablesync/logger"
)

// RetryPolicy retries operations that fail with a ConnectionError.
// The wait between attempts doubles each time.
// A MaxAttempts below 2 means no retries.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Do calls fn until it succeeds, it returns an error other than ConnectionError, or attempts run out.
func (p RetryPolicy) Do(ctx context.Context, log logger.Logger, operation string, fn func() error) error {
	backoff := p.Backoff
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var ce *ConnectionError
		if !errors.As(err, &ce) || attempt >= p.MaxAttempts { // if we should give up...
			return err
		}
		log.Warn("Retrying ", operation, " in ", backoff, " after attempt ", attempt, "/", p.MaxAttempts, " failed: ", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
