package polidi

import (
	"reflect"
	"slices"
	"strings"
)

type (
	// Module is the explicit list of types an application offers for
	// scanning, usually one per package or binary.
	Module struct {
		name       string
		candidates []Candidate
	}

	// Candidate is one type offered by a [Module], together with the
	// constructor used when the container needs an instance.
	Candidate struct {
		// Type is the type as it will be stored, for example *MyBuilder.
		Type reflect.Type
		// New returns a fresh instance of Type.
		New func() (any, error)
	}

	// Descriptor is one (implementation, parameter) pair found by a scan.
	// For builders Param is the family; for configurators it is the policy
	// type accepted by Configure.
	Descriptor struct {
		Impl  reflect.Type
		Param reflect.Type

		newFn func() (any, error)
	}
)

// NewModule returns a module offering candidates.
func NewModule(name string, candidates ...Candidate) *Module {
	return &Module{name: name, candidates: slices.Clone(candidates)}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Candidates returns a copy of the offered candidates.
func (m *Module) Candidates() []Candidate { return slices.Clone(m.candidates) }

// Type offers T, instantiated by reflection: a pointer-to-struct T gets a
// freshly allocated zero struct, any other T its zero value.
func Type[T any]() Candidate {
	t := reflect.TypeFor[T]()

	return Candidate{
		Type: t,
		New: func() (any, error) {
			if t.Kind() == reflect.Pointer {
				return reflect.New(t.Elem()).Interface(), nil
			}

			return reflect.New(t).Elem().Interface(), nil
		},
	}
}

// Provide offers T with an explicit constructor, for builders and
// configurators that need dependencies of their own.
func Provide[T any](newFn func() (T, error)) Candidate {
	return Candidate{
		Type: reflect.TypeFor[T](),
		New: func() (any, error) {
			return newFn()
		},
	}
}

// ScanBuilders returns one descriptor per (builder type, family) pair in m.
// Interface types, generic instantiations, non-struct types and types
// lacking a Build method are skipped. Scanning never fails.
func ScanBuilders(m *Module) []Descriptor {
	var out []Descriptor

	seen := make(map[[2]reflect.Type]struct{})

	for _, c := range candidatesOf(m) {
		if !isConcrete(c.Type) || !c.Type.Implements(builderType) {
			continue
		}

		for _, fam := range families(c.Type) {
			k := [2]reflect.Type{c.Type, fam}
			if _, dup := seen[k]; dup {
				continue
			}

			seen[k] = struct{}{}
			out = append(out, Descriptor{Impl: c.Type, Param: fam, newFn: c.New})
		}
	}

	return out
}

// ScanConfigurators returns one descriptor per configurator type in m, keyed
// by the policy type its Configure method accepts.
func ScanConfigurators(m *Module) []Descriptor {
	var out []Descriptor

	seen := make(map[reflect.Type]struct{})

	for _, c := range candidatesOf(m) {
		if !isConcrete(c.Type) {
			continue
		}

		param, ok := configures(c.Type)
		if !ok {
			continue
		}

		if _, dup := seen[c.Type]; dup {
			continue
		}

		seen[c.Type] = struct{}{}
		out = append(out, Descriptor{Impl: c.Type, Param: param, newFn: c.New})
	}

	return out
}

func candidatesOf(m *Module) []Candidate {
	if m == nil {
		return nil
	}

	return m.candidates
}

// isConcrete reports whether t is a named, non-generic struct or pointer to
// one.
func isConcrete(t reflect.Type) bool {
	if t == nil {
		return false
	}

	named := t
	if t.Kind() == reflect.Pointer {
		named = t.Elem()
	}

	if named.Kind() != reflect.Struct || named.Name() == "" {
		return false
	}

	// Instantiated generics are the closest thing Go has to open generic
	// definitions; they never serve as registrations.
	return !strings.Contains(named.Name(), "[")
}

// families collects the Family markers held by t's fields, following
// embedded structs. The result is in declaration order without duplicates.
func families(t reflect.Type) []reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var out []reflect.Type

	visited := make(map[reflect.Type]struct{})

	var walk func(reflect.Type)

	walk = func(st reflect.Type) {
		if _, ok := visited[st]; ok {
			return
		}

		visited[st] = struct{}{}

		for i := range st.NumField() {
			f := st.Field(i)

			if f.Type.Kind() == reflect.Struct && f.Type.Implements(familyMarkerType) && f.Type.NumField() == 0 {
				//nolint:forcetypeassert // checked by Implements
				fam := reflect.Zero(f.Type).Interface().(familyMarker).familyType()
				if !slices.Contains(out, fam) {
					out = append(out, fam)
				}

				continue
			}

			if !f.Anonymous {
				continue
			}

			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}

			if ft.Kind() == reflect.Struct {
				walk(ft)
			}
		}
	}

	walk(t)

	return out
}

// configures reports the policy type accepted by t's Configure method.
func configures(t reflect.Type) (reflect.Type, bool) {
	m, ok := t.MethodByName("Configure")
	if !ok {
		return nil, false
	}

	// m.Type includes the receiver.
	mt := m.Type
	if mt.NumIn() != 2 || mt.NumOut() != 1 || mt.Out(0) != errorType {
		return nil, false
	}

	param := mt.In(1)
	if !param.Implements(policyType) {
		return nil, false
	}

	return param, true
}
