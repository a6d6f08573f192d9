package policy

import "time"

// Pattern: Factory Function. Ready-made policies for common call sites.

// StandardRetry returns a retry policy suited to a typical remote call:
// 3 retries with 100ms exponential backoff capped at 5s, 10s overall.
func StandardRetry(name string, opts ...Option) *RetryPolicy {
	base := []Option{
		WithBackoff(ExponentialBackoff(100 * time.Millisecond)),
		MaxDelay(5 * time.Second),
		WithTimeout(10 * time.Second),
	}

	return NewRetry(name, 3, append(base, opts...)...)
}

// AggressiveRetry returns a retry policy for latency-sensitive calls:
// 5 retries with 50ms jittered backoff capped at 1s, 500ms per attempt.
func AggressiveRetry(name string, opts ...Option) *RetryPolicy {
	base := []Option{
		WithBackoff(ExponentialJitterBackoff(50 * time.Millisecond)),
		MaxDelay(time.Second),
		PerAttemptTimeout(500 * time.Millisecond),
	}

	return NewRetry(name, 5, append(base, opts...)...)
}
