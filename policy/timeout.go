package policy

import "context"

// Pattern: Timeout. Bounds a whole handled call with a context deadline,
// distinguishing the policy's own deadline from parent cancellation.

// withDeadline runs run under the policy timeout, if any. When the deadline
// fires first the result fails with ErrTimeout; run keeps its derived
// context and observes the cancellation on its own.
func (c *core) withDeadline(
	ctx context.Context,
	run func(context.Context) *Result,
) *Result {
	if c.opts.timeout <= 0 {
		return run(ctx)
	}

	if ctx.Err() != nil {
		return &Result{Err: ctx.Err(), Canceled: true}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	ch := make(chan *Result, 1)

	go func() {
		ch <- run(timeoutCtx)
	}()

	select {
	case r := <-ch:
		// A failure that raced the deadline is still the deadline's doing.
		if r.Err == nil || timeoutCtx.Err() == nil || ctx.Err() != nil {
			return r
		}
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return &Result{Err: ctx.Err(), Canceled: true}
		}
	}

	c.opts.hooks.emitTimeout()

	return &Result{Err: ErrTimeout, Errors: []error{ErrTimeout}}
}
