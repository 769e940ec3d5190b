package database

import (
	"context"
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
)

// Retry runs fn up to attempts times with exponential backoff capped at maxDelay.
func Retry(ctx context.Context, attempts int, baseDelay, maxDelay time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"attempt": i + 1,
			"delay":   delay.String(),
		}).Warn("retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}

	return err
}
