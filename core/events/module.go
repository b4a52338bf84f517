package events

import "time"

// ModuleRegistered is published when a module definition is registered.
// Override is set for mocks replacing an existing definition.
type ModuleRegistered struct {
	Injector string
	Name     string
	Factory  bool
	Override bool
	Time     time.Time
}

// ModuleBootstrapped is published once per module when its value is set.
// Duration is the factory run time and is zero for plain values.
type ModuleBootstrapped struct {
	Injector string
	Name     string
	Factory  bool
	Duration time.Duration
	Time     time.Time
}

// BootstrapFailed is published when a module cannot be bootstrapped.
type BootstrapFailed struct {
	Injector string
	Name     string
	Err      error
	Time     time.Time
}

// DependencyMissing is published when a name resolves to nothing.
type DependencyMissing struct {
	Injector string
	Name     string
	Time     time.Time
}
