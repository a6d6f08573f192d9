package policy

import (
	"errors"
	"fmt"
	"time"
)

type (
	// Config holds the decoded configuration of one named policy. Embed it
	// in an application config struct and call [FromConfig].
	Config struct {
		// Retry selects a [RetryPolicy]. Optional; without it the policy is
		// a [SimplePolicy].
		Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
		// Timeout bounds a whole call. Optional. Example: "2s".
		Timeout *string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	}

	// RetryConfig holds retry settings.
	RetryConfig struct {
		// Backoff is one of "constant", "exponential", "linear",
		// "exponential_jitter". Optional; requires BaseDelay when set.
		Backoff *string `json:"backoff,omitempty" yaml:"backoff,omitempty"`
		// BaseDelay feeds the backoff curve. Example: "100ms".
		BaseDelay *string `json:"base_delay,omitempty" yaml:"base_delay,omitempty"`
		// MaxDelay caps the backoff. Optional. Example: "30s".
		MaxDelay *string `json:"max_delay,omitempty" yaml:"max_delay,omitempty"`
		// PerAttemptTimeout bounds each attempt. Optional. Example: "1s".
		PerAttemptTimeout *string `json:"per_attempt_timeout,omitempty" yaml:"per_attempt_timeout,omitempty"`
		// Retries is the number of retries after the first attempt.
		// Required.
		Retries *int `json:"retries,omitempty" yaml:"retries,omitempty"`
	}
)

var errRetriesRequired = errors.New("retries is required")

// Options converts c into construction options. Duration values are parsed
// with [time.ParseDuration].
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.Timeout != nil {
		d, err := time.ParseDuration(*c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}

		opts = append(opts, WithTimeout(d))
	}

	if c.Retry == nil {
		return opts, nil
	}

	rc := c.Retry
	if rc.Retries == nil {
		return nil, fmt.Errorf("retry: %w", errRetriesRequired)
	}

	if rc.Backoff != nil {
		if rc.BaseDelay == nil {
			return nil, errors.New("retry: base_delay is required with backoff")
		}

		base, err := time.ParseDuration(*rc.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("retry.base_delay: %w", err)
		}

		strategy, ok := ParseBackoff(*rc.Backoff, base)
		if !ok {
			return nil, fmt.Errorf("retry: unknown backoff strategy %q", *rc.Backoff)
		}

		opts = append(opts, WithBackoff(strategy))
	}

	if rc.MaxDelay != nil {
		d, err := time.ParseDuration(*rc.MaxDelay)
		if err != nil {
			return nil, fmt.Errorf("retry.max_delay: %w", err)
		}

		opts = append(opts, MaxDelay(d))
	}

	if rc.PerAttemptTimeout != nil {
		d, err := time.ParseDuration(*rc.PerAttemptTimeout)
		if err != nil {
			return nil, fmt.Errorf("retry.per_attempt_timeout: %w", err)
		}

		opts = append(opts, PerAttemptTimeout(d))
	}

	return opts, nil
}

// FromConfig builds the policy described by c. Extra opts are applied after
// the configured ones, so they take precedence.
//
//nolint:ireturn // the concrete kind depends on c
func FromConfig(name string, c *Config, opts ...Option) (Policy, error) {
	if c == nil {
		return NewSimple(name, opts...), nil
	}

	cfgOpts, err := c.Options()
	if err != nil {
		return nil, fmt.Errorf("policy %q: %w", name, err)
	}

	all := append(cfgOpts, opts...)

	if c.Retry != nil {
		return NewRetry(name, *c.Retry.Retries, all...), nil
	}

	return NewSimple(name, all...), nil
}
