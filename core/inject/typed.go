package inject

import (
	"fmt"
	"reflect"
)

// Get injects name and asserts its value to T. The imaginary dependency
// yields the zero value of T.
func Get[T any](inj *Injector, name string) (T, error) {
	var zero T
	v, err := inj.Inject(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("module %s is %T, not %s", name, v, reflect.TypeFor[T]())
	}
	return t, nil
}

// MustGet is like Get but panics on error.
func MustGet[T any](inj *Injector, name string) T {
	v, err := Get[T](inj, name)
	if err != nil {
		panic(err)
	}
	return v
}
