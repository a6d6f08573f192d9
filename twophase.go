package polidi

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/byte4ever/polidi/policy"
)

// TwoPhase splits building into creating a bare policy of kind P and
// finishing it with a configurator C. Embed a TwoPhase in a pointer
// builder and implement Build with [TwoPhase.Compose]:
//
//	type PaymentsBuilder struct {
//		polidi.Family[Payments]
//		polidi.TwoPhase[*policy.RetryPolicy, *LoggingConfigurator]
//	}
//
//	func (b *PaymentsBuilder) Build() (policy.Policy, error) {
//		return b.Compose(func() (*policy.RetryPolicy, error) {
//			return policy.NewRetry("payments", 3), nil
//		})
//	}
//
// When C is a concrete type, the configurator registered as C is used.
// When C is an interface, the single configurator registered for P is
// used. Proxies bind the configurator before calling Build; building an
// unbound TwoPhase fails with [ErrMissingConfigurator].
type TwoPhase[P policy.Policy, C Configurator[P]] struct {
	configurator C
	mu           sync.Mutex
	bound        bool
}

// twoPhase is implemented by every builder embedding a pointer-addressable
// TwoPhase.
type twoPhase interface {
	bindConfigurator(s *Scope) error
	Bound() bool
}

// Bind sets the configurator directly, bypassing the container.
func (t *TwoPhase[P, C]) Bind(c C) {
	t.mu.Lock()
	t.configurator = c
	t.bound = true
	t.mu.Unlock()
}

// Bound reports whether a configurator has been bound.
func (t *TwoPhase[P, C]) Bound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bound
}

func (t *TwoPhase[P, C]) bindConfigurator(s *Scope) error {
	c, err := resolveConfigurator[P, C](s)
	if err != nil {
		return err
	}

	t.Bind(c)

	return nil
}

// Compose creates a policy with create, runs the bound configurator on
// that exact instance once and returns it.
//
//nolint:ireturn // returns the composed policy through the Builder contract
func (t *TwoPhase[P, C]) Compose(create func() (P, error)) (policy.Policy, error) {
	t.mu.Lock()
	c, bound := t.configurator, t.bound
	t.mu.Unlock()

	if !bound {
		return nil, fmt.Errorf("%w: none bound for %s", ErrMissingConfigurator, typeName(reflect.TypeFor[P]()))
	}

	p, err := create()
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}

	if isNil(p) {
		return nil, ErrNilPolicy
	}

	if err := c.Configure(p); err != nil {
		return nil, fmt.Errorf("configure policy %q: %w", p.Name(), err)
	}

	return p, nil
}

// resolveConfigurator finds the configurator for a TwoPhase[P, C] in s.
//
//nolint:ireturn // C is the caller's configurator type
func resolveConfigurator[P policy.Policy, C Configurator[P]](s *Scope) (C, error) {
	var zero C

	pt, ct := reflect.TypeFor[P](), reflect.TypeFor[C]()

	if s == nil {
		return zero, fmt.Errorf("%w: no scope to resolve %s", ErrMissingConfigurator, typeName(ct))
	}

	var entry Entry

	if ct.Kind() == reflect.Interface {
		var matches []Entry

		for _, e := range s.c.reg.configuratorsFor(pt) {
			if e.Impl.Implements(ct) {
				matches = append(matches, e)
			}
		}

		switch len(matches) {
		case 0:
			return zero, fmt.Errorf("%w: none registered for %s", ErrMissingConfigurator, typeName(pt))
		case 1:
			entry = matches[0]
		default:
			return zero, fmt.Errorf(
				"%w: %d configurators registered for %s",
				ErrAmbiguousConfigurator, len(matches), typeName(pt),
			)
		}
	} else {
		e, ok := s.c.reg.Lookup(ContractConfigurator, ct)
		if !ok {
			return zero, fmt.Errorf("%w: %s is not registered", ErrMissingConfigurator, typeName(ct))
		}

		entry = e
	}

	v, err := s.resolveEntry(kindConfigurator, entry.Impl, entry)
	if err != nil {
		return zero, err
	}

	c, ok := v.(C)
	if !ok {
		return zero, fmt.Errorf("%w: %s is not a %s", ErrMissingConfigurator, typeName(entry.Impl), typeName(ct))
	}

	return c, nil
}

// Build builds b, first binding its configurator from s when b embeds a
// [TwoPhase] that is not bound yet. Proxies build through it; call it
// directly to build outside a proxy.
//
//nolint:ireturn // policies are heterogeneous
func Build(s *Scope, b Builder) (policy.Policy, error) {
	if err := bindTwoPhase(s, b); err != nil {
		return nil, err
	}

	p, err := b.Build()
	if err != nil {
		return nil, err
	}

	if isNil(p) {
		return nil, ErrNilPolicy
	}

	return p, nil
}

// bindTwoPhase binds b's configurator from s when b embeds an unbound
// [TwoPhase]. Other builders are left alone.
func bindTwoPhase(s *Scope, b Builder) error {
	tp, ok := b.(twoPhase)
	if !ok || tp.Bound() {
		return nil
	}

	return tp.bindConfigurator(s)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
