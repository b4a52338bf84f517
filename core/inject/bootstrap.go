package inject

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/injector/core/events"
)

// Parse bootstraps the module registered under name and returns its record.
// Unknown names return (nil, nil).
func (i *Injector) Parse(name string) (*Record, error) {
	rec, ok := i.registry.Get(name)
	if !ok {
		return nil, nil
	}
	if err := i.parse(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// parse guarantees rec is Bootstrapped on success. Dependencies registered
// but not yet bootstrapped are parsed first; a dependency already in
// progress is a cycle.
func (i *Injector) parse(rec *Record) error {
	if !IsFactory(rec.Definition) {
		if !rec.State.IsBootstrapped() {
			rec.State = Bootstrapped(rec.Definition)
			i.publish(events.ModuleBootstrapped{Injector: i.name, Name: rec.Name, Time: time.Now()})
		}
		return nil
	}
	if rec.State.IsBootstrapped() {
		return nil
	}
	if rec.resolving {
		err := &CyclicDependencyError{Cycle: i.cycleTo(rec.Name)}
		if i.cycleErr == nil {
			i.cycleErr = err
		}
		return err
	}

	rec.resolving = true
	i.stack = append(i.stack, rec.Name)
	defer func() {
		rec.resolving = false
		i.stack = i.stack[:len(i.stack)-1]
		if len(i.stack) == 0 {
			i.cycleErr = nil
		}
	}()
	pending := i.cycleErr

	for _, dep := range rec.Dependencies {
		depRec, ok := i.registry.Get(dep)
		if !ok || depRec.State.IsBootstrapped() {
			continue
		}
		if err := i.parse(depRec); err != nil {
			return err
		}
	}

	states := i.resolver.Resolve(rec.Dependencies)
	args := make([]any, len(states))
	for n, st := range states {
		args[n] = st.Value()
	}

	start := time.Now()
	val, err := rec.Definition.(*Factory).call(rec.Name, rec.Dependencies, args)
	if err == nil && pending == nil && i.cycleErr != nil {
		// The factory dropped a cycle error returned by the inject accessor.
		err = i.cycleErr
	}
	if err != nil {
		i.log.Errorf("bootstrap %s failed: %v", rec.Name, err)
		i.publish(events.BootstrapFailed{Injector: i.name, Name: rec.Name, Err: err, Time: time.Now()})
		return err
	}
	rec.State = Bootstrapped(val)
	elapsed := time.Since(start)
	i.log.Debugf("bootstrapped %s in %s", rec.Name, elapsed)
	i.publish(events.ModuleBootstrapped{
		Injector: i.name,
		Name:     rec.Name,
		Factory:  true,
		Duration: elapsed,
		Time:     time.Now(),
	})
	return nil
}

// cycleTo returns the bootstrap stack from the first occurrence of name,
// closed by name itself.
func (i *Injector) cycleTo(name string) []string {
	for n, s := range i.stack {
		if s == name {
			cycle := append([]string{}, i.stack[n:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}

// Bootstrap parses every registered module and returns the registry once
// all of them are bootstrapped. Modules registered by factories during the
// walk are bootstrapped too. The first error aborts the walk.
func (i *Injector) Bootstrap(ctx context.Context) (*Registry, error) {
	start := time.Now()
	i.log.Infof("bootstrapping %d modules for %s", i.registry.Len(), i.name)
	var names []string
	for len(names) != i.registry.Len() {
		names = i.registry.Names()
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("bootstrap %s: %w", i.name, err)
			}
			rec, _ := i.registry.Get(name)
			if err := i.parse(rec); err != nil {
				return nil, err
			}
		}
	}
	i.publish(events.InjectorReady{Injector: i.name, ID: i.id, Modules: len(names), Duration: time.Since(start), Time: time.Now()})
	i.log.Infof("%s ready in %s", i.name, time.Since(start))
	return i.registry, nil
}
