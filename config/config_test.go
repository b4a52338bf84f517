package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `name: shop
directories:
  - ./modules
  - ./plugins
exclude: ["legacy"]
mocks:
  Mailer: "noop"
  Clock:
    factory: env
    conf:
      key: FIXED_TIME
host:
  env:
    prefix: SHOP_
metrics:
  sinks:
    - type: "nop"
  prometheus_port: ":9100"
events:
  mqtt:
    broker: "tcp://localhost:1883"
    topic: "shop/events"
logging:
  level: DEBUG
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"name", cfg.Name, "shop"},
		{"directories", len(cfg.Directories), 2},
		{"exclude", cfg.Exclude[0], "legacy"},
		{"mock value", cfg.Mocks["Mailer"], "noop"},
		{"host env prefix", cfg.Host["env"]["prefix"], "SHOP_"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"mqtt broker", cfg.Events.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt client id default", cfg.Events.MQTT.ClientID, "shop"},
		{"mqtt topic", cfg.Events.MQTT.Topic, "shop/events"},
		{"buffer default", cfg.Events.Buffer, 64},
		{"level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	clock, ok := cfg.Mocks["Clock"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "env", clock["factory"])
}

func TestLoad_SingleDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"directory": "./modules", "directories": "./more"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./modules", "./more"}, cfg.Directories)
	assert.Equal(t, "injector", cfg.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\nlogging:\n  level: info\n"), 0o644))
	t.Setenv("INJECT_NAME", "env")
	t.Setenv("INJECT_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Name)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "injector", cfg.Name)
	assert.Empty(t, cfg.Directories)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "config.ini"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging:\n  level: loud\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "logging.level must be one of: debug info warn error")

	sink := filepath.Join(dir, "sink.yaml")
	require.NoError(t, os.WriteFile(sink, []byte("metrics:\n  sinks:\n    - conf: {}\n"), 0o644))
	_, err = Load(sink)
	assert.ErrorContains(t, err, "metrics.sinks[0].type is required")
}

func TestValidate(t *testing.T) {
	cfg := Config{Directories: []string{"./modules", "  "}}
	cfg.SetDefaults()
	assert.ErrorContains(t, cfg.Validate(), "directories[1] is required")

	cfg = Config{Mocks: map[string]any{"": 1}}
	cfg.SetDefaults()
	assert.ErrorContains(t, cfg.Validate(), "mocks")

	cfg = Config{Mocks: map[string]any{"Foo": 42}}
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())

	assert.ErrorContains(t, LoggingConfig{Level: "loud"}.Validate(), "level must be one of")
	assert.NoError(t, LoggingConfig{Level: "warn"}.Validate())
}
