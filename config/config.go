package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/injector/core/metrics"
	"github.com/kilianp07/injector/infra/mqtt"
)

// EnvPrefix selects the environment variables overriding file settings.
// Nested keys are separated by a double underscore, for example
// INJECT_LOGGING__LEVEL=debug.
const EnvPrefix = "INJECT_"

// Config holds the settings of one injector instance.
type Config struct {
	Name string `json:"name"`
	// Directory is a single modules directory, merged into Directories.
	Directory string `json:"directory"`
	// Directories accepts a single path or a list.
	Directories []string `json:"directories" validate:"dive,required"`
	Exclude     []string `json:"exclude"`
	Extensions  []string `json:"extensions"`
	// Mocks replace discovered modules. Values follow the module file
	// entry format.
	Mocks map[string]any `json:"mocks" validate:"dive,keys,required,endkeys"`
	// Host holds the configuration of host modules, keyed by name.
	Host    map[string]map[string]any `json:"host"`
	Metrics metrics.Config            `json:"metrics"`
	Events  EventsConfig              `json:"events"`
	Logging LoggingConfig             `json:"logging"`
}

// EventsConfig configures lifecycle event forwarding.
type EventsConfig struct {
	// MQTT forwards events to a broker when Broker is set.
	MQTT mqtt.Config `json:"mqtt"`
	// Buffer is the per-subscriber event buffer size.
	Buffer int `json:"buffer" validate:"gte=1"`
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "injector"
	}
	if c.Directory != "" {
		c.Directories = append([]string{c.Directory}, c.Directories...)
		c.Directory = ""
	}
	for n, d := range c.Directories {
		c.Directories[n] = strings.TrimSpace(d)
	}
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = 64
	}
	if c.Events.MQTT.Broker != "" && c.Events.MQTT.ClientID == "" {
		c.Events.MQTT.ClientID = c.Name
	}
	c.Logging.SetDefaults()
}

// Validate checks the struct tags of the configuration.
func (c Config) Validate() error {
	return validateStruct(c)
}
