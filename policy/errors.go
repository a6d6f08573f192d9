package policy

import "errors"

// ---------------------------------------------------------------------------
// Error types
// ---------------------------------------------------------------------------

type (
	// ResilienceError identifies errors produced by a policy itself, as
	// opposed to errors returned by the handled action.
	//nolint:iface // exported for consumer error classification.
	ResilienceError interface {
		error
		// IsResilience reports whether this error originates from a policy.
		IsResilience() bool
	}

	// classifiedError carries an explicit retry classification. The
	// outermost classification wins when errors are wrapped repeatedly.
	classifiedError struct {
		err       error
		permanent bool
	}

	// resilienceError is the concrete type backing all sentinel errors.
	resilienceError string
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

// Sentinel policy errors.
var (
	// ErrTimeout is returned when a handled action exceeds the policy deadline.
	ErrTimeout error = resilienceError("timeout")
	// ErrRetriesExhausted wraps the last error once every retry has been used.
	ErrRetriesExhausted error = resilienceError("retries exhausted")
	// ErrPanic wraps a value recovered from a panicking action.
	ErrPanic error = resilienceError("action panicked")
	// ErrNoFallback is returned by a fallback policy built without a fallback.
	ErrNoFallback error = resilienceError("no fallback configured")
)

// ---------------------------------------------------------------------------
// error interface
// ---------------------------------------------------------------------------

func (e *classifiedError) Error() string {
	if e.permanent {
		return "permanent: " + e.err.Error()
	}

	return "transient: " + e.err.Error()
}

func (e *classifiedError) Unwrap() error { return e.err }

func (e resilienceError) Error() string { return string(e) }

// IsResilience reports whether the error is a policy infrastructure error.
func (resilienceError) IsResilience() bool { return true }

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Transient marks err as retriable. Returns nil if err is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &classifiedError{err: err}
}

// Permanent marks err as non-retriable: a retry policy stops at the first
// permanent error. Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &classifiedError{err: err, permanent: true}
}

// IsTransient reports whether err may be retried. Unclassified errors are
// transient. Returns false for nil.
func IsTransient(err error) bool {
	return err != nil && !IsPermanent(err)
}

// IsPermanent reports whether err was marked as permanent.
func IsPermanent(err error) bool {
	var ce *classifiedError

	return errors.As(err, &ce) && ce.permanent
}
