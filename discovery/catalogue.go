package discovery

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"strings"
	"text/template"

	"github.com/kilianp07/injector/core/factory"
	"github.com/kilianp07/injector/core/inject"
)

// FactoryFunc is the function a catalogue factory produces for one module.
// It receives the resolved values of the module's deps in order.
type FactoryFunc func(args ...any) (any, error)

// Catalogue maps factory type names to builders. Builders receive the
// module conf with the declared dependency names under "deps".
type Catalogue struct {
	reg *factory.Registry[FactoryFunc]
}

// NewCatalogue returns a catalogue holding the built-in factory types.
func NewCatalogue() *Catalogue {
	c := &Catalogue{reg: factory.NewRegistry[FactoryFunc]()}
	_ = c.Register("alias", aliasFactory)
	_ = c.Register("list", listFactory)
	_ = c.Register("merge", mergeFactory)
	_ = c.Register("sprintf", sprintfFactory)
	_ = c.Register("env", envFactory)
	_ = c.Register("template", templateFactory)
	return c
}

// Register adds a factory type.
func (c *Catalogue) Register(name string, f factory.Factory[FactoryFunc]) error {
	return c.reg.Register(name, f)
}

// Types lists the registered factory types.
func (c *Catalogue) Types() []string { return c.reg.Names() }

// Build turns d into an injector definition: the plain value, or a
// factory over d.Deps.
func (c *Catalogue) Build(d Definition) (any, error) {
	if !d.IsFactory() {
		return d.Value, nil
	}
	conf := make(map[string]any, len(d.Conf)+1)
	maps.Copy(conf, d.Conf)
	deps := make([]any, len(d.Deps))
	for i, n := range d.Deps {
		deps[i] = n
	}
	conf["deps"] = deps
	fn, err := c.reg.Create(factory.ModuleConfig{Type: d.Factory, Conf: conf})
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", d.Name, err)
	}
	return inject.Func(strings.Join(d.Deps, ", "), fn), nil
}

// Register builds every definition and registers it on inj, stopping at
// the first error.
func Register(inj *inject.Injector, cat *Catalogue, defs []Definition) error {
	for _, d := range defs {
		def, err := cat.Build(d)
		if err != nil {
			return fmt.Errorf("%s: %w", d.File, err)
		}
		if err := inj.Module(d.Name, def); err != nil {
			return fmt.Errorf("%s: %w", d.File, err)
		}
	}
	return nil
}

type depsConf struct {
	Deps []string `json:"deps"`
}

func aliasFactory(conf map[string]any) (FactoryFunc, error) {
	var c depsConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if len(c.Deps) != 1 {
		return nil, fmt.Errorf("alias needs exactly one dependency, got %d", len(c.Deps))
	}
	return func(args ...any) (any, error) { return args[0], nil }, nil
}

func listFactory(map[string]any) (FactoryFunc, error) {
	return func(args ...any) (any, error) {
		return append([]any{}, args...), nil
	}, nil
}

type mergeConf struct {
	Base map[string]any `json:"base"`
}

// mergeFactory merges map dependencies over conf.base, later ones winning.
func mergeFactory(conf map[string]any) (FactoryFunc, error) {
	var c mergeConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	return func(args ...any) (any, error) {
		out := make(map[string]any, len(c.Base))
		maps.Copy(out, c.Base)
		for i, a := range args {
			switch m := a.(type) {
			case nil:
			case map[string]any:
				maps.Copy(out, m)
			case map[string]string:
				for k, v := range m {
					out[k] = v
				}
			default:
				return nil, fmt.Errorf("merge argument %d is %T, not a map", i, a)
			}
		}
		return out, nil
	}, nil
}

type sprintfConf struct {
	Format string `json:"format"`
}

func sprintfFactory(conf map[string]any) (FactoryFunc, error) {
	var c sprintfConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.Format == "" {
		return nil, fmt.Errorf("sprintf needs a format")
	}
	return func(args ...any) (any, error) {
		return fmt.Sprintf(c.Format, args...), nil
	}, nil
}

type envConf struct {
	Key      string `json:"key"`
	Default  string `json:"default"`
	Required bool   `json:"required"`
}

func envFactory(conf map[string]any) (FactoryFunc, error) {
	var c envConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.Key == "" {
		return nil, fmt.Errorf("env needs a key")
	}
	return func(...any) (any, error) {
		if v, ok := os.LookupEnv(c.Key); ok {
			return v, nil
		}
		if c.Required {
			return nil, fmt.Errorf("environment variable %s is not set", c.Key)
		}
		return c.Default, nil
	}, nil
}

type templateConf struct {
	Text string   `json:"text"`
	Deps []string `json:"deps"`
}

// templateFactory renders a text/template with the dependencies as data,
// keyed by name.
func templateFactory(conf map[string]any) (FactoryFunc, error) {
	var c templateConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	tmpl, err := template.New("module").Option("missingkey=zero").Parse(c.Text)
	if err != nil {
		return nil, err
	}
	return func(args ...any) (any, error) {
		data := make(map[string]any, len(args))
		for i, a := range args {
			data[c.Deps[i]] = a
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}, nil
}
