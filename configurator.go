package polidi

import "github.com/byte4ever/polidi/policy"

// Configurator finishes a freshly created policy of kind P, typically by
// attaching error processors or result handlers. A configurator is found by
// its Configure method alone; the policy type it accepts is the key
// two-phase builders resolve it by, so builders of different families that
// produce the same policy kind share one configurator.
type Configurator[P policy.Policy] interface {
	Configure(p P) error
}

// ConfiguratorFunc adapts a function into a [Configurator]. It is meant for
// [TwoPhase.Bind]; the scanner cannot discover function types.
type ConfiguratorFunc[P policy.Policy] func(p P) error

// Configure calls f.
func (f ConfiguratorFunc[P]) Configure(p P) error { return f(p) }
