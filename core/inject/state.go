package inject

import "fmt"

// Imaginary is the value substituted for dependencies that cannot be
// resolved.
var Imaginary any

// State is the bootstrap state of a module. The zero value is
// NotBootstrapped.
type State struct {
	value        any
	bootstrapped bool
}

// NotBootstrapped marks a module whose value has not been computed yet.
var NotBootstrapped = State{}

// Bootstrapped returns the state of a module materialized to v.
func Bootstrapped(v any) State { return State{value: v, bootstrapped: true} }

// IsBootstrapped reports whether the state carries a value.
func (s State) IsBootstrapped() bool { return s.bootstrapped }

// Value returns the bootstrapped value, or nil when not bootstrapped.
func (s State) Value() any { return s.value }

func (s State) String() string {
	if !s.bootstrapped {
		return "NotBootstrapped"
	}
	return fmt.Sprintf("Bootstrapped(%v)", s.value)
}
