package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/zidane0000/ai-interview-platform/utils"
)

// RetryConfig bounds a retry-with-backoff loop around a single external call.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first. Default 3.
	BaseDelay   time.Duration // delay before the second attempt. Default 250ms.
	MaxDelay    time.Duration // backoff cap. Default 5s.
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 250 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	return c
}

// Retry calls fn up to cfg.MaxAttempts times, doubling the delay between
// attempts (capped at cfg.MaxDelay), stopping early if ctx is cancelled or
// fn succeeds. It returns the last error if every attempt fails.
func Retry(ctx context.Context, cfg RetryConfig, name string, fn func() error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < cfg.MaxAttempts {
			utils.Warningf("%s: attempt %d/%d failed: %v", name, attempt, cfg.MaxAttempts, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return fmt.Errorf("%s: exhausted %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}
