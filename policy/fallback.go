package policy

import "context"

// Pattern: Fallback. Catches the action's error and substitutes the
// output of a fallback function, a last line of defence.

// FallbackFunc produces a substitute output for a failed call.
type FallbackFunc func(ctx context.Context, err error) (any, error)

// FallbackPolicy runs an action once and falls back on failure.
type FallbackPolicy struct {
	core

	fallback FallbackFunc
}

// NewFallback returns a policy that calls fallback when the action fails.
func NewFallback(name string, fallback FallbackFunc, opts ...Option) *FallbackPolicy {
	p := &FallbackPolicy{fallback: fallback}
	p.init(name, opts)

	return p
}

// FallbackValue returns a [FallbackFunc] that always substitutes v.
func FallbackValue[T any](v T) FallbackFunc {
	return func(context.Context, error) (any, error) {
		return v, nil
	}
}

// Handle runs action, falling back on failure.
func (p *FallbackPolicy) Handle(ctx context.Context, action Action) *Result {
	return p.HandleValue(ctx, action.asFunc())
}

// HandleValue runs fn, falling back on failure. The result succeeds when
// either fn or the fallback succeeds; Errors keeps the original failure.
func (p *FallbackPolicy) HandleValue(ctx context.Context, fn Func) *Result {
	return p.finish(p.withDeadline(ctx, func(ctx context.Context) *Result {
		if err := ctx.Err(); err != nil {
			return &Result{Err: err, Canceled: true}
		}

		out, err := p.attempt(ctx, fn)
		res := &Result{Attempts: 1, Output: out}

		if err == nil {
			return res
		}

		res.Errors = []error{err}
		p.process(ctx, err, 1)

		if canceled(ctx, err) {
			res.Output = nil
			res.Err = err
			res.Canceled = true

			return res
		}

		if p.fallback == nil {
			res.Output = nil
			res.Err = ErrNoFallback

			return res
		}

		p.opts.hooks.emitFallbackUsed(err)

		res.Output, res.Err = p.fallback(ctx, err)
		if res.Err != nil {
			res.Errors = append(res.Errors, res.Err)
		}

		return res
	}))
}

// HandleAsync is the asynchronous form of [FallbackPolicy.Handle].
func (p *FallbackPolicy) HandleAsync(ctx context.Context, action Action, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.Handle(ctx, action) })
}

// HandleValueAsync is the asynchronous form of [FallbackPolicy.HandleValue].
func (p *FallbackPolicy) HandleValueAsync(ctx context.Context, fn Func, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.HandleValue(ctx, fn) })
}
