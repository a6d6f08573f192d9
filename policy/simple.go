package policy

import "context"

// SimplePolicy runs an action exactly once. Its value lies in the uniform
// surface: errors and panics become failed results and pass through the
// error processors.
type SimplePolicy struct {
	core
}

// NewSimple returns a single-attempt policy.
func NewSimple(name string, opts ...Option) *SimplePolicy {
	p := &SimplePolicy{}
	p.init(name, opts)

	return p
}

// Handle runs action once.
func (p *SimplePolicy) Handle(ctx context.Context, action Action) *Result {
	return p.HandleValue(ctx, action.asFunc())
}

// HandleValue runs fn once and records its output.
func (p *SimplePolicy) HandleValue(ctx context.Context, fn Func) *Result {
	return p.finish(p.withDeadline(ctx, func(ctx context.Context) *Result {
		if err := ctx.Err(); err != nil {
			return &Result{Err: err, Canceled: true}
		}

		out, err := p.attempt(ctx, fn)
		res := &Result{Attempts: 1, Output: out}

		if err != nil {
			res.Output = nil
			res.Err = err
			res.Errors = []error{err}
			res.Canceled = canceled(ctx, err)
			p.process(ctx, err, 1)
		}

		return res
	}))
}

// HandleAsync is the asynchronous form of [SimplePolicy.Handle].
func (p *SimplePolicy) HandleAsync(ctx context.Context, action Action, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.Handle(ctx, action) })
}

// HandleValueAsync is the asynchronous form of [SimplePolicy.HandleValue].
func (p *SimplePolicy) HandleValueAsync(ctx context.Context, fn Func, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.HandleValue(ctx, fn) })
}
