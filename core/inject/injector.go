package inject

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/injector/core/events"
	"github.com/kilianp07/injector/core/logger"
	"github.com/kilianp07/injector/internal/eventbus"
)

// InjectorModule is the name of the built-in inject accessor module.
const InjectorModule = "inject"

// Injector owns a registry of modules and bootstraps them.
//
// An Injector is not safe for concurrent registration or bootstrap. Once a
// module is bootstrapped, reading it has no side effects.
type Injector struct {
	name     string
	id       string
	registry *Registry
	resolver *Resolver
	log      logger.Logger
	bus      eventbus.EventBus

	// stack holds the names of the factories currently being bootstrapped.
	stack []string
	// cycleErr is the first cycle detected since the outermost parse began.
	// A factory that completes while it is set fails with it.
	cycleErr *CyclicDependencyError
}

// Option configures an Injector.
type Option func(*Injector)

// WithHostSource sets the fallback used for unregistered names.
func WithHostSource(h HostSource) Option {
	return func(i *Injector) {
		if h != nil {
			i.resolver.host = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(i *Injector) {
		if l != nil {
			i.log = l
			i.resolver.log = l
		}
	}
}

// WithEventBus publishes lifecycle events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(i *Injector) {
		i.bus = bus
		i.resolver.bus = bus
	}
}

// New creates an Injector and registers the inject accessor.
func New(name string, opts ...Option) *Injector {
	reg := NewRegistry()
	inj := &Injector{
		name:     name,
		id:       uuid.NewString(),
		registry: reg,
		resolver: NewResolver(reg, nil, nil),
		log:      logger.NopLogger{},
	}
	for _, o := range opts {
		o(inj)
	}
	inj.resolver.injector = name
	inj.registerAccessor()
	return inj
}

// Name returns the injector name.
func (i *Injector) Name() string { return i.name }

// ID returns a unique identifier of this injector instance.
func (i *Injector) ID() string { return i.id }

// Registry exposes the underlying registry.
func (i *Injector) Registry() *Registry { return i.registry }

// Module registers a module definition. def is either a *Factory or a plain
// value.
func (i *Injector) Module(name string, def any) error {
	_, err := i.register(name, def, false)
	return err
}

// Constant registers a plain value. Constants are never invoked, even when
// the value is a *Factory.
func (i *Injector) Constant(name string, val any) error {
	if _, ok := i.registry.Get(name); ok {
		return &DuplicateModuleError{Name: name, Kind: "constant"}
	}
	rec, err := i.registry.Register(name, val, []string{}, false)
	if err != nil {
		return err
	}
	rec.State = Bootstrapped(val)
	i.publish(events.ModuleRegistered{Injector: i.name, Name: name, Time: time.Now()})
	return nil
}

// Mock registers def under name, replacing any existing definition.
func (i *Injector) Mock(name string, def any) error {
	_, err := i.register(name, def, true)
	return err
}

func (i *Injector) register(name string, def any, override bool) (*Record, error) {
	deps := Dependencies(def)
	if f, ok := def.(*Factory); ok && f != nil {
		if err := f.validate(name, deps); err != nil {
			return nil, err
		}
	}
	rec, err := i.registry.Register(name, def, deps, override)
	if err != nil {
		return nil, err
	}
	i.log.Debugw("module registered", map[string]any{"injector": i.name, "module": name, "dependencies": deps, "override": override})
	i.publish(events.ModuleRegistered{
		Injector: i.name,
		Name:     name,
		Factory:  IsFactory(def),
		Override: override,
		Time:     time.Now(),
	})
	return rec, nil
}

// GetModule returns the record registered under name.
func (i *Injector) GetModule(name string) (*Record, bool) {
	return i.registry.Get(name)
}

// ResolveDependencies resolves names without bootstrapping anything.
func (i *Injector) ResolveDependencies(names []string) []State {
	return i.resolver.Resolve(names)
}

// Inject returns the value of name, bootstrapping it first if needed.
// Unknown names yield the imaginary dependency and no error.
func (i *Injector) Inject(name string) (any, error) {
	if rec, ok := i.registry.Get(name); ok {
		if err := i.parse(rec); err != nil {
			return nil, err
		}
	}
	st := i.resolver.Resolve([]string{name})[0]
	return st.Value(), nil
}

func (i *Injector) publish(ev eventbus.Event) {
	if i.bus != nil {
		i.bus.Publish(ev)
	}
}
