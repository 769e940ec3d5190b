package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, 2*time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not ready")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Millisecond, time.Millisecond, func() error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}
