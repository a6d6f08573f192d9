package polidi

import (
	"context"
	"reflect"
	"sync"

	"github.com/byte4ever/polidi/policy"
)

// Proxy is the handle application code holds for family F. It builds its
// policy on first use, exactly once, and forwards every call to it. When
// building fails the proxy stays failed: invocations return a failed
// result carrying the construction error and never retry the build.
// Resolve a new proxy to try again.
//
// Proxy implements [policy.Policy], so [policy.Call] and
// [policy.CallAsync] accept it.
type Proxy[F any] struct {
	builder Builder
	scope   *Scope
	build   func() (policy.Policy, error)
}

var _ policy.Policy = (*Proxy[struct{}])(nil)

// newProxy binds a two-phase builder's configurator right away, while s is
// still open, and defers the build itself to first use. A binding error is
// kept and reported by that first use.
func newProxy[F any](s *Scope, b Builder) *Proxy[F] {
	bindErr := bindTwoPhase(s, b)

	px := &Proxy[F]{builder: b, scope: s}
	px.build = sync.OnceValues(func() (policy.Policy, error) {
		logger := s.c.logger.With("family", typeName(FamilyOf[F]()), "scope", s.id)

		var (
			p   policy.Policy
			err = bindErr
		)

		if err == nil {
			p, err = Build(s, b)
		}

		if err != nil {
			logger.Warn("policy construction failed", "builder", typeName(reflect.TypeOf(b)), "error", err)

			return nil, err
		}

		logger.Debug("policy built", "policy", p.Name())

		return p, nil
	})

	return px
}

// Family returns the family key of the proxy.
func (px *Proxy[F]) Family() reflect.Type { return FamilyOf[F]() }

// Builder returns the builder the proxy builds from.
//
//nolint:ireturn // builders are heterogeneous
func (px *Proxy[F]) Builder() Builder { return px.builder }

// Policy builds the policy if needed and returns it.
//
//nolint:ireturn // the concrete policy kind is up to the builder
func (px *Proxy[F]) Policy() (policy.Policy, error) { return px.build() }

// Err returns the construction error, if any, building first if needed.
func (px *Proxy[F]) Err() error {
	_, err := px.build()

	return err
}

// Name returns the policy name, or "" when construction failed. Use
// [Proxy.Err] to tell a failed build from an unnamed policy.
func (px *Proxy[F]) Name() string {
	p, err := px.build()
	if err != nil {
		return ""
	}

	return p.Name()
}

// Processors returns the policy's error processors, or nil when
// construction failed. Use [Proxy.Err] to get the construction error.
func (px *Proxy[F]) Processors() []policy.ErrorProcessor {
	p, err := px.build()
	if err != nil {
		return nil
	}

	return p.Processors()
}

// Handle forwards to the policy's Handle.
func (px *Proxy[F]) Handle(ctx context.Context, action policy.Action) *policy.Result {
	p, err := px.build()
	if err != nil {
		return px.failed(err)
	}

	return p.Handle(ctx, action)
}

// HandleValue forwards to the policy's HandleValue.
func (px *Proxy[F]) HandleValue(ctx context.Context, fn policy.Func) *policy.Result {
	p, err := px.build()
	if err != nil {
		return px.failed(err)
	}

	return p.HandleValue(ctx, fn)
}

// HandleAsync forwards to the policy's HandleAsync.
func (px *Proxy[F]) HandleAsync(
	ctx context.Context,
	action policy.Action,
	detached bool,
) <-chan *policy.Result {
	p, err := px.build()
	if err != nil {
		return policy.Completed(px.failed(err))
	}

	return p.HandleAsync(ctx, action, detached)
}

// HandleValueAsync forwards to the policy's HandleValueAsync.
func (px *Proxy[F]) HandleValueAsync(
	ctx context.Context,
	fn policy.Func,
	detached bool,
) <-chan *policy.Result {
	p, err := px.build()
	if err != nil {
		return policy.Completed(px.failed(err))
	}

	return p.HandleValueAsync(ctx, fn, detached)
}

func (px *Proxy[F]) failed(err error) *policy.Result {
	return policy.Failed(FamilyOf[F]().Name(), err)
}
