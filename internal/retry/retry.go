// Package retry provides bounded exponential backoff with jitter for
// calls to external collaborators.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"clipstamp/internal/types"
)

// Config holds retry tuning.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultConfig returns sensible defaults for API calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// Classifier decides whether an error is worth retrying.
type Classifier func(error) bool

// IsRetryable is the default classifier: rate limits retry, auth
// failures and missing entities are permanent, as are context errors.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if types.IsAuthFailure(err) || types.IsNotFound(err) {
		return false
	}
	return true
}

// Do runs fn until it succeeds, the classifier marks the error
// permanent, retries are exhausted, or the context ends.
func Do(ctx context.Context, cfg Config, classify Classifier, fn func(context.Context) error) error {
	if classify == nil {
		classify = IsRetryable
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !classify(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := jitter(backoff, cfg.JitterFraction)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return fmt.Errorf("after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	spread := float64(d) * fraction
	offset := (rand.Float64()*2 - 1) * spread
	out := time.Duration(float64(d) + offset)
	if out < 0 {
		return 0
	}
	return out
}
