package polidi

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

type (
	// Entry is one registration. Entries never change once recorded.
	Entry struct {
		// Param is the family for builders and the accepted policy type for
		// configurators. It is nil for the open handle binding.
		Param reflect.Type
		// Impl is the registered implementation type. It is nil for the open
		// handle binding, which serves every family.
		Impl     reflect.Type
		Contract Contract
		Lifetime Lifetime

		newFn func() (any, error)
	}

	entryKey struct {
		key      reflect.Type
		contract Contract
	}

	// Registry records what a [Container] can resolve. Builders are keyed
	// by family. Configurators are keyed by their own type and indexed by
	// the policy type they accept.
	//
	// Registration is meant for start-up. A registry is frozen once handed
	// to [NewContainer] and rejects further registrations.
	Registry struct {
		logger    *slog.Logger
		lifetimes map[string]Lifetime
		entries   map[entryKey]*Entry
		byPolicy  map[reflect.Type][]*Entry
		order     []entryKey
		mu        sync.RWMutex
		frozen    bool
	}
)

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	s := buildSettings(opts)

	return &Registry{
		logger:    s.logger,
		lifetimes: s.lifetimes,
		entries:   make(map[entryKey]*Entry),
		byPolicy:  make(map[reflect.Type][]*Entry),
	}
}

// String describes the entry for logs and diagnostics.
func (e Entry) String() string {
	switch e.Contract {
	case ContractPolicy:
		return fmt.Sprintf("policy Proxy[*] (%s)", e.Lifetime)
	default:
		return fmt.Sprintf("%s %s -> %s (%s)", e.Contract, typeName(e.Param), typeName(e.Impl), e.Lifetime)
	}
}

// Add scans m for builders and configurators, registers them with lt and
// installs the open handle binding. Adding the same module twice is a
// no-op.
func (r *Registry) Add(m *Module, lt Lifetime) error {
	if err := r.RegisterBuilders(m, lt); err != nil {
		return err
	}

	if err := r.RegisterConfigurators(m, lt); err != nil {
		return err
	}

	return r.RegisterOpenHandle(lt)
}

// RegisterBuilders registers every builder found in m under its family.
// A family already bound to the same type is skipped; a family bound to a
// different type fails with [ErrConflictingRegistration] and leaves the
// registry unchanged.
func (r *Registry) RegisterBuilders(m *Module, lt Lifetime) error {
	descs := ScanBuilders(m)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	var fresh []*Entry

	for _, d := range descs {
		k := entryKey{contract: ContractBuilder, key: d.Param}

		bound, ok := r.entries[k]
		if !ok {
			bound = findParam(fresh, d.Param)
		}

		if bound != nil {
			if bound.Impl != d.Impl {
				return conflict(k, bound.Impl, d.Impl)
			}

			continue
		}

		fresh = append(fresh, &Entry{
			Contract: ContractBuilder,
			Param:    d.Param,
			Impl:     d.Impl,
			Lifetime: r.lifetimeFor(d.Param, lt),
			newFn:    d.newFn,
		})
	}

	for _, e := range fresh {
		r.record(entryKey{contract: ContractBuilder, key: e.Param}, e)
	}

	return nil
}

// RegisterConfigurators registers every configurator found in m as itself
// and indexes it by the policy type it configures.
func (r *Registry) RegisterConfigurators(m *Module, lt Lifetime) error {
	descs := ScanConfigurators(m)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	for _, d := range descs {
		k := entryKey{contract: ContractConfigurator, key: d.Impl}
		if _, ok := r.entries[k]; ok {
			continue
		}

		e := &Entry{
			Contract: ContractConfigurator,
			Param:    d.Param,
			Impl:     d.Impl,
			Lifetime: lt,
			newFn:    d.newFn,
		}

		r.record(k, e)
		r.byPolicy[d.Param] = append(r.byPolicy[d.Param], e)
	}

	return nil
}

// RegisterOpenHandle installs the binding that makes a [Proxy] resolvable
// for every registered family. Only the first call takes effect.
func (r *Registry) RegisterOpenHandle(lt Lifetime) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	k := entryKey{contract: ContractPolicy}
	if _, ok := r.entries[k]; ok {
		return nil
	}

	r.record(k, &Entry{Contract: ContractPolicy, Lifetime: lt})

	return nil
}

// Lookup returns the entry bound to (contract, key). The key is the family
// for builders and the configurator type for configurators; the open
// handle is looked up with a nil key.
func (r *Registry) Lookup(contract Contract, key reflect.Type) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryKey{contract: contract, key: key}]
	if !ok {
		return Entry{}, false
	}

	return *e, true
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.entries[k])
	}

	return out
}

// Count returns the number of entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry is read-only.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// configuratorsFor returns the configurators accepting policy type p.
func (r *Registry) configuratorsFor(p reflect.Type) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.byPolicy[p]))
	for _, e := range r.byPolicy[p] {
		out = append(out, *e)
	}

	return out
}

// handleLifetime returns the lifetime of proxies for family fam.
func (r *Registry) handleLifetime(fam reflect.Type) (Lifetime, bool) {
	h, ok := r.Lookup(ContractPolicy, nil)
	if !ok {
		return 0, false
	}

	return r.lifetimeFor(fam, h.Lifetime), true
}

func (r *Registry) lifetimeFor(fam reflect.Type, fallback Lifetime) Lifetime {
	if lt, ok := r.lifetimes[fam.Name()]; ok {
		return lt
	}

	if lt, ok := r.lifetimes[fam.String()]; ok {
		return lt
	}

	return fallback
}

func conflict(k entryKey, bound, impl reflect.Type) error {
	return fmt.Errorf(
		"%w: %s %s is bound to %s, not %s",
		ErrConflictingRegistration, k.contract, typeName(k.key), typeName(bound), typeName(impl),
	)
}

// record stores e under k. Callers hold r.mu.
func (r *Registry) record(k entryKey, e *Entry) {
	r.entries[k] = e
	r.order = append(r.order, k)
	r.logger.Debug("registered", "entry", e.String())
}

func findParam(es []*Entry, param reflect.Type) *Entry {
	i := slices.IndexFunc(es, func(e *Entry) bool { return e.Param == param })
	if i < 0 {
		return nil
	}

	return es[i]
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
