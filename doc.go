// Package polidi registers policy builders discovered from a module's type
// list and hands them out as typed, lazily built handles.
//
// A builder declares the family it serves by holding a [Family] marker and
// implementing [Builder]. [Registry.Add] scans a [Module] for builders and
// configurators; a [Container] then resolves a [Proxy] per family, honouring
// the registered [Lifetime]. The proxy builds its policy on first use. When
// the builder embeds [TwoPhase], the configurator registered for the
// built policy type is injected first and applied to the bare policy.
//
//	reg := polidi.NewRegistry()
//	if err := reg.Add(polidi.NewModule("app",
//		polidi.Type[*PaymentsBuilder](),
//		polidi.Type[*LoggingConfigurator](),
//	), polidi.Singleton); err != nil {
//		return err
//	}
//
//	c := polidi.NewContainer(reg)
//	h, err := polidi.Resolve[Payments](c.Root())
//	res := h.Handle(ctx, charge)
//
// The resilience behaviour itself lives in package policy.
package polidi
