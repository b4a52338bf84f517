// Package inject implements the module registry, dependency resolver and lazy
// bootstrap engine of the injector.
//
// A module is a named definition. Any Go value is a plain module; a *Factory
// built with Func declares an ordered parameter list whose names refer to
// other modules. Bootstrap materializes every module exactly once, after its
// dependencies:
//
//	inj := inject.New("app")
//	_ = inj.Module("A", 2)
//	_ = inj.Module("B", 3)
//	_ = inj.Module("Sum", inject.Func("A, B", func(a, b int) int { return a + b }))
//	if _, err := inj.Bootstrap(ctx); err != nil {
//	    return err
//	}
//	sum, _ := inject.Get[int](inj, "Sum") // 5
//
// Names that resolve to nothing yield the imaginary dependency (nil) instead
// of an error. Duplicate registrations and dependency cycles are reported.
package inject
