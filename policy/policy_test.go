package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// SimplePolicy
// ---------------------------------------------------------------------------

func TestSimpleSuccess(t *testing.T) {
	p := NewSimple("simple")

	res := Call(context.Background(), p, func(context.Context) (string, error) {
		return "done", nil
	})

	if !res.IsSuccess() || res.Value != "done" {
		t.Fatalf("result = (%q, %v), want (done, nil)", res.Value, res.Err)
	}
	if res.Attempts != 1 {
		t.Fatalf("Attempts = %d, want 1", res.Attempts)
	}
}

func TestSimpleFailureIsProcessed(t *testing.T) {
	var infos []ErrorInfo
	p := NewSimple("simple-fail")
	p.AddProcessor(ProcessorFunc(func(_ context.Context, _ error, info ErrorInfo) {
		infos = append(infos, info)
	}))

	cause := errors.New("broken")
	res := p.Handle(context.Background(), func(context.Context) error { return cause })

	if !errors.Is(res.Err, cause) {
		t.Fatalf("Err = %v, want %v", res.Err, cause)
	}
	if len(infos) != 1 || infos[0].PolicyName != "simple-fail" || infos[0].Attempt != 1 {
		t.Fatalf("processed infos = %+v, want one entry for attempt 1", infos)
	}
}

func TestSimplePanicBecomesFailedResult(t *testing.T) {
	p := NewSimple("simple-panic")

	res := p.Handle(context.Background(), func(context.Context) error { panic("kaboom") })

	if !errors.Is(res.Err, ErrPanic) {
		t.Fatalf("Err = %v, want ErrPanic", res.Err)
	}
}

func TestSimpleCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res := NewSimple("cancelled").Handle(ctx, func(context.Context) error {
		called = true
		return nil
	})

	if called {
		t.Fatal("action ran on a cancelled context")
	}
	if !res.Canceled {
		t.Fatal("Canceled = false, want true")
	}
}

// ---------------------------------------------------------------------------
// FallbackPolicy
// ---------------------------------------------------------------------------

func TestFallbackSubstitutesValue(t *testing.T) {
	var used error
	p := NewFallback("fallback", FallbackValue("cached"),
		WithHooks(Hooks{OnFallbackUsed: func(err error) { used = err }}),
	)
	cause := errors.New("primary down")

	res := Call(context.Background(), p, func(context.Context) (string, error) {
		return "", cause
	})

	if !res.IsSuccess() || res.Value != "cached" {
		t.Fatalf("result = (%q, %v), want (cached, nil)", res.Value, res.Err)
	}
	if !errors.Is(used, cause) {
		t.Fatalf("OnFallbackUsed err = %v, want %v", used, cause)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(res.Errors))
	}
}

func TestFallbackNotUsedOnSuccess(t *testing.T) {
	p := NewFallback("fallback-ok", func(context.Context, error) (any, error) {
		t.Fatal("fallback called on success")
		return nil, nil
	})

	res := Call(context.Background(), p, func(context.Context) (int, error) { return 7, nil })
	if res.Value != 7 {
		t.Fatalf("Value = %d, want 7", res.Value)
	}
}

func TestFallbackErrorIsReported(t *testing.T) {
	ferr := errors.New("fallback failed too")
	p := NewFallback("fallback-err", func(context.Context, error) (any, error) { return nil, ferr })

	res := p.Handle(context.Background(), func(context.Context) error { return errors.New("x") })

	if !errors.Is(res.Err, ferr) {
		t.Fatalf("Err = %v, want %v", res.Err, ferr)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(res.Errors))
	}
}

func TestFallbackWithoutFunc(t *testing.T) {
	res := NewFallback("no-fallback", nil).Handle(
		context.Background(),
		func(context.Context) error { return errors.New("x") },
	)
	if !errors.Is(res.Err, ErrNoFallback) {
		t.Fatalf("Err = %v, want ErrNoFallback", res.Err)
	}
}

// ---------------------------------------------------------------------------
// Async surface
// ---------------------------------------------------------------------------

func TestHandleAsyncInlineIsReadyOnReturn(t *testing.T) {
	p := NewSimple("inline")
	ran := false

	ch := p.HandleAsync(context.Background(), func(context.Context) error {
		ran = true
		return nil
	}, false)

	if !ran {
		t.Fatal("inline async call did not run before returning")
	}
	select {
	case res := <-ch:
		if !res.IsSuccess() {
			t.Fatalf("Err = %v, want nil", res.Err)
		}
	default:
		t.Fatal("channel empty after inline async call")
	}
}

func TestHandleAsyncDetachedRunsElsewhere(t *testing.T) {
	p := NewSimple("detached")
	release := make(chan struct{})

	ch := p.HandleAsync(context.Background(), func(context.Context) error {
		<-release
		return nil
	}, true)

	// The caller is not blocked by the action.
	close(release)

	select {
	case res := <-ch:
		if !res.IsSuccess() {
			t.Fatalf("Err = %v, want nil", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("detached async call never completed")
	}
}

func TestCallAsyncTyped(t *testing.T) {
	p := NewRetry("typed-async", 1, WithClock(&immediateClock{}))
	attempt := 0

	res := <-CallAsync(context.Background(), p, func(context.Context) (string, error) {
		attempt++
		if attempt == 1 {
			return "", errors.New("first fails")
		}
		return "second", nil
	}, true)

	if res.Value != "second" {
		t.Fatalf("Value = %q, want %q", res.Value, "second")
	}
}

func TestAsyncChannelIsClosedAfterResult(t *testing.T) {
	ch := NewSimple("closed").HandleValueAsync(
		context.Background(),
		func(context.Context) (any, error) { return 1, nil },
		true,
	)
	<-ch
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after its single result")
	}
}

// ---------------------------------------------------------------------------
// Processors and result handlers
// ---------------------------------------------------------------------------

func TestProcessorsSnapshotIsIsolated(t *testing.T) {
	p := NewSimple("snapshot")
	p.AddProcessor(ProcessorFunc(func(context.Context, error, ErrorInfo) {}))
	p.AddProcessor(nil)

	snap := p.Processors()
	if len(snap) != 1 {
		t.Fatalf("len(Processors()) = %d, want 1", len(snap))
	}

	snap[0] = nil
	if p.Processors()[0] == nil {
		t.Fatal("mutating a snapshot changed the policy's processors")
	}
}

func TestProcessorsConcurrentAdd(t *testing.T) {
	p := NewSimple("concurrent")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.AddProcessor(ProcessorFunc(func(context.Context, error, ErrorInfo) {}))
			_ = p.Processors()
		}()
	}
	wg.Wait()

	if n := len(p.Processors()); n != 50 {
		t.Fatalf("len(Processors()) = %d, want 50", n)
	}
}

func TestResultHandlerSeesFinalResult(t *testing.T) {
	var got *Result
	p := NewRetry("handled", 1, WithClock(&immediateClock{}))
	p.AddResultHandler(func(r *Result) { got = r })

	res := p.Handle(context.Background(), func(context.Context) error { return errors.New("x") })

	if got != res {
		t.Fatal("result handler did not receive the returned result")
	}
}

func TestFailedResult(t *testing.T) {
	res := Failed("broken", context.Canceled)
	if !res.IsFailed() || !res.Canceled || res.PolicyName != "broken" {
		t.Fatalf("Failed() = %+v, want failed, canceled, named", res)
	}
}
