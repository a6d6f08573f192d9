package polidi

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

type (
	// Container resolves registrations from a frozen [Registry], honouring
	// each registration's [Lifetime]. Singletons are
	// built at most once even under concurrent first resolution.
	Container struct {
		reg        *Registry
		logger     *slog.Logger
		root       *Scope
		singletons onceCache
	}

	// Scope is one unit of work. Scoped registrations resolve to one
	// instance per scope; singletons resolved through any scope are shared
	// with the root scope.
	Scope struct {
		c      *Container
		cache  onceCache
		id     uuid.UUID
		mu     sync.Mutex
		closed bool
	}

	cacheKind uint8

	cacheKey struct {
		t    reflect.Type
		kind cacheKind
	}

	// onceCache memoises one construction per key. The map lock is only held
	// to find or insert the key's once-function, never while it runs.
	onceCache struct {
		items map[cacheKey]func() (any, error)
		mu    sync.Mutex
	}
)

const (
	kindBuilder cacheKind = iota
	kindConfigurator
	kindHandle
)

// NewContainer freezes reg and returns a container resolving from it.
func NewContainer(reg *Registry, opts ...Option) *Container {
	s := buildSettings(opts)

	reg.Freeze()

	c := &Container{reg: reg, logger: s.logger}
	c.root = c.newScope()

	return c
}

// New registers m with lt into a fresh registry and returns a container
// over it.
func New(m *Module, lt Lifetime, opts ...Option) (*Container, error) {
	reg := NewRegistry(opts...)
	if err := reg.Add(m, lt); err != nil {
		return nil, fmt.Errorf("register module %q: %w", m.Name(), err)
	}

	return NewContainer(reg, opts...), nil
}

// Registry returns the frozen registry.
func (c *Container) Registry() *Registry { return c.reg }

// Root returns the container's root scope. Scoped registrations resolved
// through it live as long as the container.
func (c *Container) Root() *Scope { return c.root }

// NewScope starts a unit of work.
func (c *Container) NewScope() *Scope {
	s := c.newScope()
	c.logger.Debug("scope created", "scope", s.id)

	return s
}

func (c *Container) newScope() *Scope {
	return &Scope{c: c, id: uuid.New()}
}

// ID identifies the scope in logs.
func (s *Scope) ID() uuid.UUID { return s.id }

// Container returns the owning container.
func (s *Scope) Container() *Container { return s.c }

// Close drops the scope's instances. Further resolutions through s fail
// with [ErrScopeClosed]; handles already resolved keep working.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cache.reset()
	s.c.logger.Debug("scope closed", "scope", s.id)
}

func (s *Scope) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// resolve returns the instance for key under lt, calling build when a new
// one is needed. Singletons are built against the root scope.
func (s *Scope) resolve(
	key cacheKey,
	lt Lifetime,
	build func(*Scope) (any, error),
) (any, error) {
	if s.isClosed() {
		return nil, ErrScopeClosed
	}

	switch lt {
	case Singleton:
		root := s.c.root

		return s.c.singletons.get(key, func() (any, error) { return build(root) })
	case Scoped:
		return s.cache.get(key, func() (any, error) { return build(s) })
	default:
		return build(s)
	}
}

// resolveEntry instantiates e under its lifetime.
func (s *Scope) resolveEntry(kind cacheKind, key reflect.Type, e Entry) (any, error) {
	return s.resolve(cacheKey{kind: kind, t: key}, e.Lifetime, func(*Scope) (any, error) {
		v, err := e.newFn()
		if err != nil {
			return nil, fmt.Errorf("construct %s: %w", typeName(e.Impl), err)
		}

		return v, nil
	})
}

func (s *Scope) resolveBuilder(fam reflect.Type) (Builder, error) {
	e, ok := s.c.reg.Lookup(ContractBuilder, fam)
	if !ok {
		return nil, fmt.Errorf("%w: no builder for family %s", ErrServiceNotFound, typeName(fam))
	}

	v, err := s.resolveEntry(kindBuilder, fam, e)
	if err != nil {
		return nil, err
	}

	b, ok := v.(Builder)
	if !ok || isNil(b) {
		return nil, fmt.Errorf("%w: %s", ErrNilBuilder, typeName(e.Impl))
	}

	return b, nil
}

// ResolveBuilder returns the builder registered for family F.
//
//nolint:ireturn // builders are heterogeneous
func ResolveBuilder[F any](s *Scope) (Builder, error) {
	return s.resolveBuilder(FamilyOf[F]())
}

// Resolve returns the handle for family F. The handle's lifetime is that of
// the open handle binding, unless overridden for F. It fails with
// [ErrServiceNotFound] when F has no builder or no open handle binding was
// registered.
func Resolve[F any](s *Scope) (*Proxy[F], error) {
	fam := FamilyOf[F]()

	lt, ok := s.c.reg.handleLifetime(fam)
	if !ok {
		return nil, fmt.Errorf("%w: no handle binding for family %s", ErrServiceNotFound, typeName(fam))
	}

	if _, ok := s.c.reg.Lookup(ContractBuilder, fam); !ok {
		return nil, fmt.Errorf("%w: no builder for family %s", ErrServiceNotFound, typeName(fam))
	}

	v, err := s.resolve(cacheKey{kind: kindHandle, t: fam}, lt, func(owner *Scope) (any, error) {
		b, err := owner.resolveBuilder(fam)
		if err != nil {
			return nil, err
		}

		return newProxy[F](owner, b), nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:forcetypeassert // the cache only stores *Proxy[F] under this key
	return v.(*Proxy[F]), nil
}

// MustResolve is like [Resolve] but panics on error. Use it in program
// initialisation only.
func MustResolve[F any](s *Scope) *Proxy[F] {
	px, err := Resolve[F](s)
	if err != nil {
		panic(err)
	}

	return px
}

func (oc *onceCache) get(key cacheKey, build func() (any, error)) (any, error) {
	oc.mu.Lock()

	if oc.items == nil {
		oc.items = make(map[cacheKey]func() (any, error))
	}

	once, ok := oc.items[key]
	if !ok {
		once = sync.OnceValues(build)
		oc.items[key] = once
	}

	oc.mu.Unlock()

	return once()
}

// len reports how many keys have been resolved.
func (oc *onceCache) len() int {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	return len(oc.items)
}

func (oc *onceCache) reset() {
	oc.mu.Lock()
	oc.items = nil
	oc.mu.Unlock()
}
