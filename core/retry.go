package core

import "time"

// RetryPolicy defines retry behavior for IO operations.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts (0 = no retry).
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// BackoffRatio multiplies the delay after each retry. With
	// InitialDelay=100ms and BackoffRatio=2.0 the delays are 100ms, 200ms,
	// 400ms (capped by MaxDelay).
	BackoffRatio float64
}

// DefaultRetryPolicy returns a sensible default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		BackoffRatio: 2.0,
	}
}

// NoRetry returns a policy with no retries.
func NoRetry() RetryPolicy {
	return RetryPolicy{BackoffRatio: 1.0}
}

// Delay returns the backoff delay for the given 0-indexed retry attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.InitialDelay == 0 {
		return 0
	}

	delay := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffRatio
	}

	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}
