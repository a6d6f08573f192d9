package policy

import (
	"context"
	"sync"
	"sync/atomic"
)

type (
	// ErrorInfo describes where a processed error was caught.
	ErrorInfo struct {
		PolicyName string
		// Attempt is 1-indexed.
		Attempt int
	}

	// ErrorProcessor is invoked for every error a policy catches, before the
	// policy decides what to do next.
	ErrorProcessor interface {
		Process(ctx context.Context, err error, info ErrorInfo)
	}

	// ProcessorFunc adapts a plain function into an [ErrorProcessor].
	ProcessorFunc func(ctx context.Context, err error, info ErrorInfo)

	// ResultHandler observes the final result of every handled call.
	ResultHandler func(r *Result)
)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, err error, info ErrorInfo) {
	f(ctx, err, info)
}

// cowList is an append-only copy-on-write list: writers serialise on mu and
// publish a fresh slice, readers load the current slice without locking.
type cowList[E any] struct {
	items atomic.Pointer[[]E]
	mu    sync.Mutex
}

func (l *cowList[E]) add(e E) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var old []E
	if p := l.items.Load(); p != nil {
		old = *p
	}

	updated := make([]E, len(old), len(old)+1)
	copy(updated, old)
	updated = append(updated, e)
	l.items.Store(&updated)
}

// load returns the published slice. Callers must not modify it.
func (l *cowList[E]) load() []E {
	if p := l.items.Load(); p != nil {
		return *p
	}

	return nil
}

func (l *cowList[E]) snapshot() []E {
	cur := l.load()
	out := make([]E, len(cur))
	copy(out, cur)

	return out
}
