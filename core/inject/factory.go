package inject

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Factory is a module definition computed from other modules. Its parameter
// list names the dependencies passed positionally to the function.
type Factory struct {
	params string
	fn     any
}

// Func declares a factory. params is a comma separated list of module names,
// for example "Logger, Config"; fn must accept one argument per name (or be
// variadic) and return a value, a value and an error, or nothing.
func Func(params string, fn any) *Factory {
	return &Factory{params: params, fn: fn}
}

// Params returns the raw parameter list.
func (f *Factory) Params() string { return f.params }

// ParseParams splits a parameter list on commas and trims each name. A blank
// list yields no names.
func ParseParams(params string) []string {
	if strings.TrimSpace(params) == "" {
		return []string{}
	}
	parts := strings.Split(params, ",")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return names
}

// Dependencies returns the ordered dependency names declared by def. Plain
// values have none.
func Dependencies(def any) []string {
	f, ok := def.(*Factory)
	if !ok || f == nil {
		return []string{}
	}
	return ParseParams(f.params)
}

// IsFactory reports whether def is a factory definition.
func IsFactory(def any) bool {
	f, ok := def.(*Factory)
	return ok && f != nil
}

func (f *Factory) validate(module string, deps []string) error {
	if f.fn == nil {
		return &InvalidFactoryError{Module: module, Reason: "nil function"}
	}
	t := reflect.TypeOf(f.fn)
	if t.Kind() != reflect.Func {
		return &InvalidFactoryError{Module: module, Reason: fmt.Sprintf("%s is not a function", t)}
	}
	in := t.NumIn()
	if t.IsVariadic() {
		if len(deps) < in-1 {
			return &InvalidFactoryError{Module: module, Reason: fmt.Sprintf("needs at least %d dependencies, %d declared", in-1, len(deps))}
		}
	} else if in != len(deps) {
		return &InvalidFactoryError{Module: module, Reason: fmt.Sprintf("takes %d arguments, %d dependencies declared", in, len(deps))}
	}
	switch t.NumOut() {
	case 0, 1:
	case 2:
		if !t.Out(1).Implements(errorType) {
			return &InvalidFactoryError{Module: module, Reason: "second result must be an error"}
		}
	default:
		return &InvalidFactoryError{Module: module, Reason: "too many results"}
	}
	return nil
}

// call invokes the factory with the resolved dependency values.
func (f *Factory) call(module string, deps []string, args []any) (out any, err error) {
	fv := reflect.ValueOf(f.fn)
	t := fv.Type()
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		v, cerr := convertArg(a, pt)
		if cerr != nil {
			return nil, &ArgumentError{
				Module:     module,
				Dependency: deps[i],
				Position:   i,
				Want:       pt.String(),
				Got:        cerr.Error(),
			}
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &FactoryError{Module: module, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res := fv.Call(in)
	switch len(res) {
	case 0:
		return nil, nil
	case 1:
		return res[0].Interface(), nil
	default:
		if e, _ := res[1].Interface().(error); e != nil {
			return nil, &FactoryError{Module: module, Err: e}
		}
		return res[0].Interface(), nil
	}
}

type typeMismatch string

func (t typeMismatch) Error() string { return string(t) }

func convertArg(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(pt), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(pt.Kind()) {
		if !fitsNumeric(v, pt) {
			return reflect.Value{}, typeMismatch(fmt.Sprintf("%s %v (not representable)", v.Type(), a))
		}
		return v.Convert(pt), nil
	}
	return reflect.Value{}, typeMismatch(v.Type().String())
}

// fitsNumeric reports whether v converts to pt without overflow, sign loss
// or truncation of a fractional part.
func fitsNumeric(v reflect.Value, pt reflect.Type) bool {
	target := reflect.Zero(pt)
	switch {
	case v.CanInt():
		n := v.Int()
		switch {
		case isSigned(pt.Kind()):
			return !target.OverflowInt(n)
		case isUnsigned(pt.Kind()):
			return n >= 0 && !target.OverflowUint(uint64(n))
		}
		return true
	case v.CanUint():
		n := v.Uint()
		switch {
		case isSigned(pt.Kind()):
			return n <= math.MaxInt64 && !target.OverflowInt(int64(n))
		case isUnsigned(pt.Kind()):
			return !target.OverflowUint(n)
		}
		return true
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return !isSigned(pt.Kind()) && !isUnsigned(pt.Kind())
	}
	switch {
	case isSigned(pt.Kind()):
		return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !target.OverflowInt(int64(f))
	case isUnsigned(pt.Kind()):
		return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !target.OverflowUint(uint64(f))
	}
	return !target.OverflowFloat(f)
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
