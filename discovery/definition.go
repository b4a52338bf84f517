package discovery

import (
	"fmt"
	"sort"
)

// Definition is one module entry read from a module file.
type Definition struct {
	Name string
	File string
	// Value is the plain value of the module. It is only meaningful when
	// Factory is empty.
	Value any
	// Factory names a catalogue factory type.
	Factory string
	Deps    []string
	Conf    map[string]any
}

// IsFactory reports whether d references a catalogue factory.
func (d Definition) IsFactory() bool { return d.Factory != "" }

type entry struct {
	Factory string         `json:"factory"`
	Deps    []string       `json:"deps"`
	Conf    map[string]any `json:"conf"`
}

// definitions converts the "modules" table of a decoded file.
func definitions(file string, doc map[string]any) ([]Definition, error) {
	raw, ok := doc["modules"]
	if !ok || raw == nil {
		return nil, nil
	}
	mods, ok := toStringMap(raw)
	if !ok {
		return nil, fmt.Errorf("%s: modules must be a table, got %T", file, raw)
	}
	names := make([]string, 0, len(mods))
	for n := range mods {
		names = append(names, n)
	}
	sort.Strings(names)

	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		def, err := ParseEntry(file, name, mods[name])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ParseEntry converts one raw module entry. Maps need either a value or a
// factory key; any other value is a plain value.
func ParseEntry(file, name string, raw any) (Definition, error) {
	def := Definition{Name: name, File: file}
	m, ok := toStringMap(raw)
	if !ok {
		def.Value = raw
		return def, nil
	}
	val, hasValue := m["value"]
	_, hasFactory := m["factory"]
	switch {
	case hasValue && hasFactory:
		return def, fmt.Errorf("%s: module %s: value and factory are exclusive", file, name)
	case hasValue:
		def.Value = val
		return def, nil
	case !hasFactory:
		return def, fmt.Errorf("%s: module %s: needs a value or a factory", file, name)
	}
	var e entry
	if err := decode(m, &e); err != nil {
		return def, fmt.Errorf("%s: module %s: %w", file, name, err)
	}
	if e.Factory == "" {
		return def, fmt.Errorf("%s: module %s: empty factory type", file, name)
	}
	def.Factory = e.Factory
	def.Deps = e.Deps
	def.Conf = e.Conf
	return def, nil
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}
