package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(errors.New("status 503"), 503)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("status 400")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	var retried []int
	p := fastPolicy()
	p.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	_, err := Retry(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("status 429"), 429)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_ContextCancelledStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := fastPolicy()
	p.InitialBackoff = time.Second
	p.MaxBackoff = time.Second

	_, err := Retry(ctx, p, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("status 502"), 502)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_BackoffCapped(t *testing.T) {
	p := RetryPolicy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, Multiplier: 2}.withDefaults()
	p.JitterFraction = 0
	assert.Equal(t, 100*time.Millisecond, p.backoff(0))
	assert.Equal(t, 200*time.Millisecond, p.backoff(1))
	assert.Equal(t, 300*time.Millisecond, p.backoff(2))
	assert.Equal(t, 300*time.Millisecond, p.backoff(8))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(5, 250, 2000)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, p.InitialBackoff)
	assert.Equal(t, 2*time.Second, p.MaxBackoff)

	d := PolicyFromConfig(0, 0, 0)
	assert.Equal(t, DefaultRetryPolicy().MaxAttempts, d.MaxAttempts)
}
