package polidi

import (
	"log/slog"
	"maps"
)

type (
	// Option configures a [Registry] or [Container].
	Option func(*settings)

	settings struct {
		logger    *slog.Logger
		lifetimes map[string]Lifetime
	}
)

func buildSettings(opts []Option) settings {
	s := settings{logger: slog.Default()}

	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return s
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLifetimes overrides the registration lifetime per family. Keys are
// matched against the family type's name ("Payments") and then its
// qualified form ("billing.Payments"). The override applies to the family's
// builder and to its handle. Registries ignore it when passed to
// [NewContainer].
func WithLifetimes(byFamily map[string]Lifetime) Option {
	return func(s *settings) {
		if s.lifetimes == nil {
			s.lifetimes = make(map[string]Lifetime, len(byFamily))
		}

		maps.Copy(s.lifetimes, byFamily)
	}
}
