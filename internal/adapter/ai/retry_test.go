package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
)

func fastPolicy() ai.RetryPolicy {
	return ai.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2.0}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()
	calls := 0
	err := fastPolicy().Retry(context.Background(), "chat", func() error {
		calls++
		if calls < 3 {
			return &ai.StatusError{Op: "chat", Status: 429}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	t.Parallel()
	last := &ai.StatusError{Op: "embed", Status: 503}
	calls := 0
	err := fastPolicy().Retry(context.Background(), "embed", func() error {
		calls++
		return last
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	var se *ai.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.Status)
}

func TestRetry_PermanentFailureAbortsImmediately(t *testing.T) {
	t.Parallel()
	boom := errors.New("invalid api key")
	calls := 0
	err := fastPolicy().Retry(context.Background(), "chat", func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_MessageBasedTransientDetection(t *testing.T) {
	t.Parallel()
	calls := 0
	err := fastPolicy().Retry(context.Background(), "chat", func() error {
		calls++
		return errors.New("The model is overloaded. Please try again later.")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()
	assert.True(t, ai.IsTransient(&ai.StatusError{Op: "chat", Status: 429}))
	assert.True(t, ai.IsTransient(&ai.StatusError{Op: "chat", Status: 503}))
	assert.False(t, ai.IsTransient(&ai.StatusError{Op: "chat", Status: 400}))
	assert.False(t, ai.IsTransient(&ai.StatusError{Op: "chat", Status: 500}))
	assert.True(t, ai.IsTransient(errors.New("429 Too Many Requests: rate limited")))
	assert.False(t, ai.IsTransient(errors.New("context canceled")))
	assert.False(t, ai.IsTransient(nil))
}
