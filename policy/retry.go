package policy

import (
	"context"
	"fmt"
)

// Pattern: Retry with Backoff. Masks transient failures by re-running the
// action; Permanent errors and a false RetryIf stop early.

// RetryPolicy re-runs a failing action up to a fixed number of retries.
type RetryPolicy struct {
	core

	retries int
}

// NewRetry returns a policy that runs an action once and then retries it
// up to retries more times. A negative count is treated as zero.
func NewRetry(name string, retries int, opts ...Option) *RetryPolicy {
	p := &RetryPolicy{retries: max(retries, 0)}
	p.init(name, opts)

	return p
}

// Retries returns the configured retry count.
func (p *RetryPolicy) Retries() int { return p.retries }

// Handle runs action with retries.
func (p *RetryPolicy) Handle(ctx context.Context, action Action) *Result {
	return p.HandleValue(ctx, action.asFunc())
}

// HandleValue runs fn with retries and records its output.
func (p *RetryPolicy) HandleValue(ctx context.Context, fn Func) *Result {
	return p.finish(p.withDeadline(ctx, func(ctx context.Context) *Result {
		return p.run(ctx, fn)
	}))
}

// HandleAsync is the asynchronous form of [RetryPolicy.Handle].
func (p *RetryPolicy) HandleAsync(ctx context.Context, action Action, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.Handle(ctx, action) })
}

// HandleValueAsync is the asynchronous form of [RetryPolicy.HandleValue].
func (p *RetryPolicy) HandleValueAsync(ctx context.Context, fn Func, detached bool) <-chan *Result {
	return dispatch(detached, func() *Result { return p.HandleValue(ctx, fn) })
}

func (p *RetryPolicy) run(ctx context.Context, fn Func) *Result {
	res := &Result{}
	attempts := p.retries + 1

	var lastErr error

	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			res.Err = err
			res.Canceled = true

			return res
		}

		res.Attempts++

		out, err := p.attempt(ctx, fn)
		if err == nil {
			res.Output = out

			return res
		}

		lastErr = err
		res.Errors = append(res.Errors, err)
		p.process(ctx, err, attempt+1)

		if canceled(ctx, err) {
			res.Err = err
			res.Canceled = true

			return res
		}

		if IsPermanent(err) {
			res.Err = err

			return res
		}

		if p.opts.retryIf != nil && !p.opts.retryIf(err) {
			res.Err = err

			return res
		}

		// No wait and no hook after the last attempt.
		if attempt == attempts-1 {
			break
		}

		p.opts.hooks.emitRetry(attempt+1, err)

		delay := p.opts.backoff.Delay(attempt)
		if p.opts.maxDelay > 0 && delay > p.opts.maxDelay {
			delay = p.opts.maxDelay
		}

		timer := p.opts.clock.NewTimer(delay)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()

			res.Err = ctx.Err()
			res.Canceled = true

			return res
		}
	}

	res.Err = fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)

	return res
}
