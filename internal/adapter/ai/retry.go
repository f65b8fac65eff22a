// Package ai provides AI client wrappers shared by the concrete adapters:
// the transient retry policy and the embedding cache.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of a single external-service call. Delay before
// retry i (0-indexed) is InitialDelay * Multiplier^i.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy matches the provider contract: three attempts total with
// 1s, 2s, 4s delays and no jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2.0}
}

// StatusError carries an HTTP status from a provider call so the retry policy
// can classify it without string matching.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string { return fmt.Sprintf("%s status %d", e.Op, e.Status) }

// transientMarkers are message fragments that indicate overload or
// rate-limiting when no structured status is available.
var transientMarkers = []string{
	"rate limit",
	"rate-limit",
	"rate limited",
	"too many requests",
	"overloaded",
	"resource exhausted",
	"resource has been exhausted",
	"model is overloaded",
	"quota exceeded",
}

// IsTransient reports whether err carries a recognizable transient signal:
// HTTP 429 or 503, or an overload/rate-limit message. Everything else is
// treated as permanent and aborts immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == 429 || se.Status == 503
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Retry runs op under the policy. Non-transient failures abort without
// consuming the remaining attempts; on exhaustion the last underlying error
// is returned unchanged so callers can apply their own message mapping.
func (p RetryPolicy) Retry(ctx context.Context, name string, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		slog.Warn("transient provider failure, will retry",
			slog.String("op", name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err))
		return err
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.InitialDelay
	expo.Multiplier = p.Multiplier
	expo.RandomizationFactor = 0
	expo.MaxInterval = time.Minute
	expo.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(attempts-1)), ctx)
	return backoff.Retry(wrapped, bo)
}
