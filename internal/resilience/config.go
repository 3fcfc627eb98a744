package resilience

import "time"

// PolicyFromConfig converts flat config values into a RetryPolicy, keeping
// defaults for anything unset.
func PolicyFromConfig(maxAttempts, initialBackoffMs, maxBackoffMs int) RetryPolicy {
	p := DefaultRetryPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		p.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		p.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	return p
}

// BreakerFromConfig converts flat config values into a BreakerConfig.
func BreakerFromConfig(failureThreshold, resetTimeoutSecs int) BreakerConfig {
	cfg := DefaultBreakerConfig()
	if failureThreshold > 0 {
		cfg.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(resetTimeoutSecs) * time.Second
	}
	return cfg
}
