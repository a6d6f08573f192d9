package policy

import (
	"context"
	"errors"
)

type (
	// Action is a handled call without a value.
	Action func(context.Context) error

	// Func is a handled call producing a value.
	Func func(context.Context) (any, error)

	// Policy is the uniform invocation surface shared by every policy kind
	// and by polidi proxies.
	//
	// The async variants run the call on a fresh goroutine when detached is
	// true; otherwise the call runs on the caller's goroutine and the returned
	// channel already holds the result. Either way the channel receives
	// exactly one result and is then closed.
	Policy interface {
		// Name returns the policy's identity.
		Name() string
		// Processors returns a snapshot of the attached error processors.
		Processors() []ErrorProcessor
		Handle(ctx context.Context, action Action) *Result
		HandleValue(ctx context.Context, fn Func) *Result
		HandleAsync(ctx context.Context, action Action, detached bool) <-chan *Result
		HandleValueAsync(ctx context.Context, fn Func, detached bool) <-chan *Result
	}

	// Result is the outcome of one handled call.
	Result struct {
		// Output is the value produced by a successful Func, nil otherwise.
		Output any
		// Err is the unhandled error; nil on success.
		Err error
		// PolicyName names the policy that produced the result.
		PolicyName string
		// Errors lists every error caught while handling, in order.
		Errors []error
		// Attempts counts how many times the action was invoked.
		Attempts int
		// Canceled reports that the caller's context ended the call.
		Canceled bool
	}

	// ValueResult is a [Result] with its output converted to T.
	ValueResult[T any] struct {
		*Result
		Value T
	}
)

// IsSuccess reports whether the call completed without an unhandled error.
func (r *Result) IsSuccess() bool { return r.Err == nil }

// IsFailed reports whether the call ended with an unhandled error.
func (r *Result) IsFailed() bool { return r.Err != nil }

// Failed returns a result that failed with err before any attempt was made.
func Failed(name string, err error) *Result {
	return &Result{
		PolicyName: name,
		Err:        err,
		Canceled:   errors.Is(err, context.Canceled),
	}
}

// Completed returns a closed channel already holding r.
func Completed(r *Result) <-chan *Result {
	ch := make(chan *Result, 1)
	ch <- r
	close(ch)

	return ch
}

// Call handles fn through p and converts the output to T.
func Call[T any](
	ctx context.Context,
	p Policy,
	fn func(context.Context) (T, error),
) *ValueResult[T] {
	return typed[T](p.HandleValue(ctx, erase(fn)))
}

// CallAsync is the asynchronous form of [Call]. detached is passed to
// [Policy.HandleValueAsync] unchanged.
func CallAsync[T any](
	ctx context.Context,
	p Policy,
	fn func(context.Context) (T, error),
	detached bool,
) <-chan *ValueResult[T] {
	in := p.HandleValueAsync(ctx, erase(fn), detached)
	out := make(chan *ValueResult[T], 1)

	if !detached {
		out <- typed[T](<-in)
		close(out)

		return out
	}

	go func() {
		out <- typed[T](<-in)
		close(out)
	}()

	return out
}

func erase[T any](fn func(context.Context) (T, error)) Func {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func typed[T any](r *Result) *ValueResult[T] {
	v, _ := r.Output.(T)

	return &ValueResult[T]{Result: r, Value: v}
}

func (a Action) asFunc() Func {
	return func(ctx context.Context) (any, error) {
		return nil, a(ctx)
	}
}

// dispatch runs run inline or on its own goroutine depending on detached.
func dispatch(detached bool, run func() *Result) <-chan *Result {
	if !detached {
		return Completed(run())
	}

	ch := make(chan *Result, 1)

	go func() {
		ch <- run()
		close(ch)
	}()

	return ch
}

var (
	_ Policy = (*RetryPolicy)(nil)
	_ Policy = (*SimplePolicy)(nil)
	_ Policy = (*FallbackPolicy)(nil)
)
