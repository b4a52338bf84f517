package inject

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyName is returned when registering a module without a name.
var ErrEmptyName = errors.New("module name is required")

// DuplicateModuleError is returned when a name is registered twice without
// override permission.
type DuplicateModuleError struct {
	Name string
	// Kind is "module" or "constant".
	Kind string
}

func (e *DuplicateModuleError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "module"
	}
	return fmt.Sprintf("cannot have two %ss with the same name: %q", kind, e.Name)
}

// CyclicDependencyError reports a dependency cycle. Cycle starts and ends
// with the same module name.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// FactoryError wraps an error returned or a panic raised by a factory.
type FactoryError struct {
	Module string
	Err    error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Module, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }

// ArgumentError is returned when a resolved dependency cannot be passed to
// the factory parameter at the same position.
type ArgumentError struct {
	Module     string
	Dependency string
	Position   int
	Want       string
	Got        string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("bootstrap %s: dependency %q (argument %d) is %s, factory wants %s",
		e.Module, e.Dependency, e.Position, e.Got, e.Want)
}

// InvalidFactoryError is returned at registration when a factory function
// does not match its declared parameter list.
type InvalidFactoryError struct {
	Module string
	Reason string
}

func (e *InvalidFactoryError) Error() string {
	return fmt.Sprintf("invalid factory for %s: %s", e.Module, e.Reason)
}
