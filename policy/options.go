package policy

import "time"

// options collects the settings shared by every policy kind. Each
// constructor reads only the fields it understands.
type options struct {
	clock             Clock
	backoff           BackoffStrategy
	retryIf           func(error) bool
	processors        []ErrorProcessor
	hooks             Hooks
	timeout           time.Duration
	maxDelay          time.Duration
	perAttemptTimeout time.Duration
}

// Option configures a policy at construction time.
//
// Pattern: Functional Options.
type Option func(*options)

func buildOptions(opts []Option) options {
	o := options{
		clock:   RealClock{},
		backoff: noBackoff,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithClock sets the clock used for retry waits.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithTimeout bounds a whole handled call, retries included. A call still
// running after d ends with [ErrTimeout].
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithErrorProcessor attaches an error processor at construction time.
func WithErrorProcessor(p ErrorProcessor) Option {
	return func(o *options) {
		if p != nil {
			o.processors = append(o.processors, p)
		}
	}
}

// WithBackoff sets the wait curve between retries. Retries are immediate
// by default.
func WithBackoff(s BackoffStrategy) Option {
	return func(o *options) {
		if s != nil {
			o.backoff = s
		}
	}
}

// MaxDelay caps the backoff delay.
func MaxDelay(d time.Duration) Option {
	return func(o *options) {
		o.maxDelay = d
	}
}

// PerAttemptTimeout bounds each individual attempt.
func PerAttemptTimeout(d time.Duration) Option {
	return func(o *options) {
		o.perAttemptTimeout = d
	}
}

// RetryIf adds a predicate consulted after the Transient/Permanent
// classification; returning false stops retrying.
func RetryIf(fn func(error) bool) Option {
	return func(o *options) {
		o.retryIf = fn
	}
}
