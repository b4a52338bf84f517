package inject

import "sort"

// Record is a registered module.
type Record struct {
	Name         string
	Definition   any
	Dependencies []string
	State        State

	// resolving is set while the record's factory dependencies are being
	// bootstrapped.
	resolving bool
}

// Registry maps module names to records.
type Registry struct {
	records map[string]*Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Register stores a new record. An existing name is replaced only when
// allowOverride is set, and the replacement starts NotBootstrapped.
func (r *Registry) Register(name string, def any, deps []string, allowOverride bool) (*Record, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if existing, ok := r.records[name]; ok {
		if !allowOverride {
			return nil, &DuplicateModuleError{Name: name}
		}
		existing.Definition = def
		existing.Dependencies = deps
		existing.State = NotBootstrapped
		existing.resolving = false
		return existing, nil
	}
	rec := &Record{Name: name, Definition: def, Dependencies: deps}
	r.records[name] = rec
	return rec, nil
}

// Get looks up a record by name.
func (r *Registry) Get(name string) (*Record, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// Names returns all registered names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.records))
	for n := range r.records {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered modules.
func (r *Registry) Len() int { return len(r.records) }
