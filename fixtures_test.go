package polidi_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/byte4ever/polidi"
	"github.com/byte4ever/polidi/policy"
)

// Families.
type (
	Alpha   struct{}
	Beta    struct{}
	Gamma   struct{}
	Delta   struct{}
	Epsilon struct{}
	Zeta    struct{}
	Eta     struct{}
	Theta   struct{}
)

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

// A builds a plain policy named "Alpha".
type A struct {
	polidi.Family[Alpha]
}

func (A) Build() (policy.Policy, error) { return policy.NewSimple("Alpha"), nil }

// B builds a retry policy named "Beta" and lets ProcessorConfigurator
// finish it.
type B struct {
	polidi.Family[Beta]
	polidi.TwoPhase[*policy.RetryPolicy, *ProcessorConfigurator]
}

func (b *B) Build() (policy.Policy, error) {
	return b.Compose(func() (*policy.RetryPolicy, error) {
		return policy.NewRetry("Beta", 1), nil
	})
}

// D is two-phase over a fallback policy, for which nothing is registered.
type D struct {
	polidi.Family[Delta]
	polidi.TwoPhase[*policy.FallbackPolicy, polidi.Configurator[*policy.FallbackPolicy]]
}

func (d *D) Build() (policy.Policy, error) {
	return d.Compose(func() (*policy.FallbackPolicy, error) {
		return policy.NewFallback("Delta", policy.FallbackValue(0)), nil
	})
}

// Multi serves two families.
type Multi struct {
	polidi.Family[Epsilon]
	zeta polidi.Family[Zeta]
}

func (*Multi) Build() (policy.Policy, error) { return policy.NewSimple("Multi"), nil }

type etaBase struct {
	polidi.Family[Eta]
}

// Derived inherits its family from an embedded struct.
type Derived struct {
	etaBase
}

func (*Derived) Build() (policy.Policy, error) { return policy.NewSimple("Derived"), nil }

// Twice reaches family Eta through two paths.
type Twice struct {
	etaBase
	eta polidi.Family[Eta]
}

func (*Twice) Build() (policy.Policy, error) { return policy.NewSimple("Twice"), nil }

// ByInterface asks for any configurator of retry policies.
type ByInterface struct {
	polidi.Family[Theta]
	polidi.TwoPhase[*policy.RetryPolicy, polidi.Configurator[*policy.RetryPolicy]]
}

func (b *ByInterface) Build() (policy.Policy, error) {
	return b.Compose(func() (*policy.RetryPolicy, error) {
		return policy.NewRetry("Theta", 0), nil
	})
}

// Unfinished has the two-phase base but no Build method.
type Unfinished struct {
	polidi.Family[Gamma]
	polidi.TwoPhase[*policy.SimplePolicy, polidi.Configurator[*policy.SimplePolicy]]
}

// Generic is an instantiated generic builder.
type Generic[T any] struct {
	polidi.Family[Gamma]
}

func (*Generic[T]) Build() (policy.Policy, error) { return policy.NewSimple("Generic"), nil }

// OtherAlpha competes with A for family Alpha.
type OtherAlpha struct {
	polidi.Family[Alpha]
}

func (*OtherAlpha) Build() (policy.Policy, error) { return policy.NewSimple("OtherAlpha"), nil }

// Broken fails to build.
type Broken struct {
	polidi.Family[Gamma]
}

var errBroken = errors.New("broken builder")

func (*Broken) Build() (policy.Policy, error) { return nil, errBroken }

// Empty builds nothing.
type Empty struct {
	polidi.Family[Gamma]
}

func (*Empty) Build() (policy.Policy, error) { return (*policy.SimplePolicy)(nil), nil }

// ---------------------------------------------------------------------------
// Configurators
// ---------------------------------------------------------------------------

// ProcessorConfigurator attaches one error processor and remembers every
// policy it configured.
type ProcessorConfigurator struct {
	mu   sync.Mutex
	seen []*policy.RetryPolicy
}

func (c *ProcessorConfigurator) Configure(p *policy.RetryPolicy) error {
	c.mu.Lock()
	c.seen = append(c.seen, p)
	c.mu.Unlock()

	p.AddProcessor(policy.ProcessorFunc(func(context.Context, error, policy.ErrorInfo) {}))

	return nil
}

func (c *ProcessorConfigurator) configured() []*policy.RetryPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*policy.RetryPolicy(nil), c.seen...)
}

// SecondRetryConfigurator also accepts retry policies.
type SecondRetryConfigurator struct{}

func (SecondRetryConfigurator) Configure(*policy.RetryPolicy) error { return nil }

// NotAConfigurator has a Configure method of the wrong shape.
type NotAConfigurator struct{}

func (NotAConfigurator) Configure(string) error { return nil }

// counting returns a candidate for *ProcessorConfigurator that counts
// instantiations and shares one configurator when shared is non-nil.
func counting(n *atomic.Int32, shared *ProcessorConfigurator) polidi.Candidate {
	return polidi.Provide(func() (*ProcessorConfigurator, error) {
		n.Add(1)

		if shared != nil {
			return shared, nil
		}

		return &ProcessorConfigurator{}, nil
	})
}

// coreModule holds the end-to-end fixtures.
func coreModule() *polidi.Module {
	return polidi.NewModule("core",
		polidi.Type[A](),
		polidi.Type[*B](),
		polidi.Type[*D](),
		polidi.Type[*ProcessorConfigurator](),
		polidi.Type[*Unfinished](),
		polidi.Type[*Generic[int]](),
		polidi.Type[polidi.Builder](),
	)
}
