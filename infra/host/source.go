// Package host provides the modules the injector falls back to when a
// dependency is not registered: process environment, clocks, identifiers
// and clients for the infrastructure the program already talks to.
package host

import (
	"sync"

	"github.com/kilianp07/injector/core/factory"
	"github.com/kilianp07/injector/infra/logger"
)

var catalogue = factory.NewRegistry[any]()

// Register adds a host module builder under name.
func Register(name string, f factory.Factory[any]) error {
	return catalogue.Register(name, f)
}

// Names lists the available host modules.
func Names() []string { return catalogue.Names() }

// Source resolves names against the host module catalogue. Each module is
// built at most once per Source, with the configuration found under its
// name. A builder error is logged and reported as a miss.
type Source struct {
	conf map[string]map[string]any
	log  logger.Logger

	mu     sync.Mutex
	loaded map[string]any
	failed map[string]bool
}

// NewSource creates a Source. conf maps host module names to their raw
// configuration.
func NewSource(conf map[string]map[string]any, log logger.Logger) *Source {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Source{
		conf:   conf,
		log:    log,
		loaded: make(map[string]any),
		failed: make(map[string]bool),
	}
}

// TryLoad implements inject.HostSource.
func (s *Source) TryLoad(name string) (any, bool) {
	if !catalogue.Has(name) {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.loaded[name]; ok {
		return v, true
	}
	if s.failed[name] {
		return nil, false
	}
	v, err := catalogue.Create(factory.ModuleConfig{Type: name, Conf: s.conf[name]})
	if err != nil {
		s.log.Warnf("host module %s unavailable: %v", name, err)
		s.failed[name] = true
		return nil, false
	}
	s.loaded[name] = v
	return v, true
}
