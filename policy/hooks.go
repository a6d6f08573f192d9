package policy

// ---------------------------------------------------------------------------
// Hooks
// ---------------------------------------------------------------------------

// Hooks holds optional callbacks fired by policies while handling an action.
// All fields are nil by default. A Hooks value must not be mutated once a
// policy holds it: emit methods read the fields without synchronisation.
//
// Pattern: Observer. Policies announce events without knowing whether
// logging, metrics or nothing at all is listening.
type Hooks struct {
	OnRetry        func(attempt int, err error)
	OnTimeout      func()
	OnFallbackUsed func(err error)
	OnHandled      func(r *Result)
}

// ---------------------------------------------------------------------------
// Emit helpers (nil-safe)
// ---------------------------------------------------------------------------

func (h *Hooks) emitRetry(attempt int, err error) {
	if h != nil && h.OnRetry != nil {
		h.OnRetry(attempt, err)
	}
}

func (h *Hooks) emitTimeout() {
	if h != nil && h.OnTimeout != nil {
		h.OnTimeout()
	}
}

func (h *Hooks) emitFallbackUsed(err error) {
	if h != nil && h.OnFallbackUsed != nil {
		h.OnFallbackUsed(err)
	}
}

func (h *Hooks) emitHandled(r *Result) {
	if h != nil && h.OnHandled != nil {
		h.OnHandled(r)
	}
}
