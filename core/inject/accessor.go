package inject

// InjectFunc is the value of the built-in "inject" module. It resolves a
// module by name at call time, bootstrapping it on demand.
type InjectFunc func(name string) (any, error)

func (i *Injector) registerAccessor() {
	fn := InjectFunc(i.Inject)
	// The accessor is a factory without dependencies so it bootstraps like
	// any other module.
	_, _ = i.registry.Register(InjectorModule, Func("", func() InjectFunc { return fn }), []string{}, false)
}
