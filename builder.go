package polidi

import (
	"reflect"

	"github.com/byte4ever/polidi/policy"
)

type (
	// Builder produces one policy instance. Implementations declare the
	// family they serve with a [Family] field.
	Builder interface {
		Build() (policy.Policy, error)
	}

	// Family marks its holder as a builder for family F. Embed it, or hold
	// it in a named field when a builder serves several families:
	//
	//	type PaymentsBuilder struct {
	//		polidi.Family[Payments]
	//		refunds polidi.Family[Refunds]
	//	}
	//
	// F is only a key; its values are never created.
	Family[F any] struct{}

	familyMarker interface {
		familyType() reflect.Type
	}
)

func (Family[F]) familyType() reflect.Type { return reflect.TypeFor[F]() }

// FamilyOf returns the key under which builders of family F are registered.
func FamilyOf[F any]() reflect.Type { return reflect.TypeFor[F]() }

//nolint:gochecknoglobals // reflected contract types
var (
	builderType      = reflect.TypeFor[Builder]()
	familyMarkerType = reflect.TypeFor[familyMarker]()
	policyType       = reflect.TypeFor[policy.Policy]()
	errorType        = reflect.TypeFor[error]()
)
