package polidi

import "errors"

// Sentinel errors.
var (
	// ErrServiceNotFound is returned when nothing is registered for the
	// requested family or configurator.
	ErrServiceNotFound = errors.New("polidi: service not found")
	// ErrMissingConfigurator is returned when a two-phase builder has no
	// configurator bound for its policy type.
	ErrMissingConfigurator = errors.New("polidi: missing configurator")
	// ErrAmbiguousConfigurator is returned when a two-phase builder asks for
	// a configurator by interface and several registrations match.
	ErrAmbiguousConfigurator = errors.New("polidi: ambiguous configurator")
	// ErrConflictingRegistration is returned when a family or configurator
	// is already bound to a different implementation.
	ErrConflictingRegistration = errors.New("polidi: conflicting registration")
	// ErrRegistryFrozen is returned when registering into a registry owned
	// by a container.
	ErrRegistryFrozen = errors.New("polidi: registry is frozen")
	// ErrNilPolicy is returned when a builder succeeds without producing a
	// policy.
	ErrNilPolicy = errors.New("polidi: builder returned a nil policy")
	// ErrNilBuilder is returned when a builder constructor succeeds without
	// producing a builder.
	ErrNilBuilder = errors.New("polidi: constructor returned a nil builder")
	// ErrScopeClosed is returned when resolving from a closed scope.
	ErrScopeClosed = errors.New("polidi: scope is closed")
)
