package inject

import (
	"time"

	"github.com/kilianp07/injector/core/events"
	"github.com/kilianp07/injector/core/logger"
	"github.com/kilianp07/injector/internal/eventbus"
)

// HostSource loads modules provided by the embedding program when a name is
// not registered. TryLoad reports false when it has nothing under that name.
type HostSource interface {
	TryLoad(name string) (any, bool)
}

// HostSourceFunc adapts a function to HostSource.
type HostSourceFunc func(name string) (any, bool)

// TryLoad calls f.
func (f HostSourceFunc) TryLoad(name string) (any, bool) { return f(name) }

// NoHost is a HostSource that never resolves anything.
var NoHost HostSource = HostSourceFunc(func(string) (any, bool) { return nil, false })

// Resolver maps dependency names to their current values.
type Resolver struct {
	registry *Registry
	host     HostSource
	log      logger.Logger
	bus      eventbus.EventBus
	injector string
}

// NewResolver creates a Resolver reading from reg and falling back to host.
func NewResolver(reg *Registry, host HostSource, log logger.Logger) *Resolver {
	if host == nil {
		host = NoHost
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Resolver{registry: reg, host: host, log: log}
}

// Resolve returns one state per name, in order. Registered modules yield
// their current state, which may be NotBootstrapped. Empty or unknown names
// yield the imaginary dependency.
func (r *Resolver) Resolve(names []string) []State {
	out := make([]State, len(names))
	for i, name := range names {
		out[i] = r.resolveOne(name)
	}
	return out
}

func (r *Resolver) resolveOne(name string) State {
	if name == "" {
		return Bootstrapped(Imaginary)
	}
	if rec, ok := r.registry.Get(name); ok {
		return rec.State
	}
	if v, ok := r.host.TryLoad(name); ok {
		r.log.Debugf("resolved %s from host modules", name)
		return Bootstrapped(v)
	}
	r.log.Debugf("dependency %s not found, using imaginary dependency", name)
	if r.bus != nil {
		r.bus.Publish(events.DependencyMissing{Injector: r.injector, Name: name, Time: time.Now()})
	}
	return Bootstrapped(Imaginary)
}
