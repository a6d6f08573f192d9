package policy

import (
	"math"
	"math/rand/v2"
	"time"
)

// ---------------------------------------------------------------------------
// Strategy interface
// ---------------------------------------------------------------------------

// BackoffStrategy determines the wait between two attempts of a
// [RetryPolicy].
//
// Pattern: Strategy. Swap wait curves without touching retry logic.
type BackoffStrategy interface {
	// Delay returns the wait before retry number attempt (0-indexed).
	Delay(attempt int) time.Duration
}

// ---------------------------------------------------------------------------
// BackoffFunc adapter
// ---------------------------------------------------------------------------

// BackoffFunc adapts a plain function into a [BackoffStrategy].
type BackoffFunc func(attempt int) time.Duration

// Delay calls f.
func (f BackoffFunc) Delay(attempt int) time.Duration { return f(attempt) }

// noBackoff retries immediately.
var noBackoff = BackoffFunc(func(int) time.Duration { return 0 })

// ---------------------------------------------------------------------------
// Built-in strategies
// ---------------------------------------------------------------------------

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return BackoffFunc(func(int) time.Duration { return d })
}

// ExponentialBackoff waits base * 2^attempt.
func ExponentialBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	})
}

// LinearBackoff waits step * (attempt + 1).
func LinearBackoff(step time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		return step * time.Duration(attempt+1)
	})
}

// ExponentialJitterBackoff waits a random duration uniformly drawn from
// [0, base * 2^attempt], spreading concurrent retries apart.
func ExponentialJitterBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		upper := int64(float64(base) * math.Pow(2, float64(attempt)))
		if upper <= 0 {
			return 0
		}

		return time.Duration(rand.Int64N(upper + 1))
	})
}

// ---------------------------------------------------------------------------
// Lookup by name
// ---------------------------------------------------------------------------

// ParseBackoff maps a backoff name to a strategy over base.
// Known names: "constant", "exponential", "linear", "exponential_jitter".
func ParseBackoff(name string, base time.Duration) (BackoffStrategy, bool) {
	switch name {
	case "constant":
		return ConstantBackoff(base), true
	case "exponential":
		return ExponentialBackoff(base), true
	case "linear":
		return LinearBackoff(base), true
	case "exponential_jitter":
		return ExponentialJitterBackoff(base), true
	default:
		return nil, false
	}
}
