package policy

import (
	"context"
	"errors"
	"fmt"
)

// core carries the state every policy kind shares. It must not be copied
// after the owning policy is returned by its constructor.
type core struct {
	opts       options
	name       string
	processors cowList[ErrorProcessor]
	handlers   cowList[ResultHandler]
}

func (c *core) init(name string, opts []Option) {
	c.name = name
	c.opts = buildOptions(opts)

	for _, p := range c.opts.processors {
		c.processors.add(p)
	}
}

// Name returns the policy name.
func (c *core) Name() string { return c.name }

// Processors returns a snapshot of the attached error processors.
func (c *core) Processors() []ErrorProcessor { return c.processors.snapshot() }

// AddProcessor attaches p to the policy. Nil processors are ignored.
func (c *core) AddProcessor(p ErrorProcessor) {
	if p != nil {
		c.processors.add(p)
	}
}

// AddResultHandler registers h to observe the final result of every call.
func (c *core) AddResultHandler(h ResultHandler) {
	if h != nil {
		c.handlers.add(h)
	}
}

// attempt invokes fn once, converting a panic into an ErrPanic failure.
func (c *core) attempt(ctx context.Context, fn Func) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if c.opts.perAttemptTimeout > 0 {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.perAttemptTimeout)
		defer cancel()

		return fn(attemptCtx)
	}

	return fn(ctx)
}

// process feeds err to every processor.
func (c *core) process(ctx context.Context, err error, attempt int) {
	info := ErrorInfo{PolicyName: c.name, Attempt: attempt}
	for _, p := range c.processors.load() {
		p.Process(ctx, err, info)
	}
}

// finish stamps r with the policy name and notifies observers.
func (c *core) finish(r *Result) *Result {
	r.PolicyName = c.name
	if r.Err != nil && !r.Canceled {
		r.Canceled = errors.Is(r.Err, context.Canceled)
	}

	for _, h := range c.handlers.load() {
		h(r)
	}

	c.opts.hooks.emitHandled(r)

	return r
}

// canceled reports whether err stems from ctx having ended.
func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
