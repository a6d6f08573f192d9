// Package policy is the resilience engine behind polidi handles.
//
// A [Policy] wraps an action and reports the outcome as a [Result] instead
// of returning the action's error directly. Every caught error is fed to
// the policy's error processors, and panics are recovered into [ErrPanic]
// failures.
package policy
