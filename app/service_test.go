package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/injector/config"
	"github.com/kilianp07/injector/core/factory"
	"github.com/kilianp07/injector/core/inject"
	"github.com/kilianp07/injector/core/logger"
	"github.com/kilianp07/injector/discovery"
)

func modulesDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testConfig(dirs ...string) *config.Config {
	cfg := &config.Config{Name: "test", Directories: dirs}
	cfg.SetDefaults()
	return cfg
}

func TestCreate_MockOverride(t *testing.T) {
	dir := modulesDir(t, map[string]string{
		"modules.yaml": "# inject\nmodules:\n  Foo: 1\n  Bar:\n    factory: alias\n    deps: [Foo]\n",
	})
	cfg := testConfig(dir)
	cfg.Mocks = map[string]any{"Foo": 42}

	var ready *inject.Injector
	svc, err := Create(context.Background(), cfg, func(inj *inject.Injector, err error) {
		require.NoError(t, err)
		ready = inj
	})
	require.NoError(t, err)
	defer svc.Close()
	require.Same(t, svc.Injector, ready)

	foo, err := ready.Inject("Foo")
	require.NoError(t, err)
	assert.Equal(t, 42, foo)
	bar, err := ready.Inject("Bar")
	require.NoError(t, err)
	assert.Equal(t, 42, bar)
}

func TestCreate_MockFactoryReplacesCodeModule(t *testing.T) {
	cfg := testConfig()
	cfg.Mocks = map[string]any{
		"Greeting": map[string]any{"factory": "sprintf", "deps": []any{"Name"}, "conf": map[string]any{"format": "mock %s"}},
	}
	svc, err := Create(context.Background(), cfg, nil, WithModules(func(inj *inject.Injector) error {
		if err := inj.Module("Name", "gopher"); err != nil {
			return err
		}
		return inj.Module("Greeting", inject.Func("Name", func(n string) string { return "hello " + n }))
	}))
	require.NoError(t, err)
	defer svc.Close()

	v, err := inject.Get[string](svc.Injector, "Greeting")
	require.NoError(t, err)
	assert.Equal(t, "mock gopher", v)
}

func TestCreate_CycleReported(t *testing.T) {
	dir := modulesDir(t, map[string]string{
		"cycle.hcl": "# inject\nmodule \"a\" {\n  factory = \"alias\"\n  deps = [\"b\"]\n}\nmodule \"b\" {\n  factory = \"alias\"\n  deps = [\"a\"]\n}\n",
	})
	called := false
	svc, err := Create(context.Background(), testConfig(dir), func(inj *inject.Injector, err error) {
		called = true
		assert.Nil(t, inj)
		assert.Error(t, err)
	})
	assert.True(t, called)
	assert.Nil(t, svc)
	var cycle *inject.CyclicDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Cycle)
}

func TestCreate_HostFallback(t *testing.T) {
	dir := modulesDir(t, map[string]string{
		"modules.json": `{"inject": true, "modules": {"Greeting": {"factory": "sprintf", "deps": ["hostname"], "conf": {"format": "hi %v"}}}}`,
	})
	h := inject.HostSourceFunc(func(name string) (any, bool) {
		if name == "hostname" {
			return "box", true
		}
		return nil, false
	})
	svc, err := Create(context.Background(), testConfig(dir), nil, WithHostSource(h))
	require.NoError(t, err)
	defer svc.Close()
	v, err := svc.Injector.Inject("Greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi box", v)
}

func TestCreate_MetricsSink(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	svc, err := Create(context.Background(), cfg, nil)
	require.NoError(t, err)
	svc.Close()
	// closing twice is harmless
	svc.Close()

	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "unknown"}}
	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

func TestNew_DiscoveryErrors(t *testing.T) {
	vendored := filepath.Join(t.TempDir(), "vendor")
	require.NoError(t, os.MkdirAll(vendored, 0o755))
	_, err := New(context.Background(), testConfig(vendored))
	assert.ErrorIs(t, err, discovery.ErrVendoredDirectory)

	dup := modulesDir(t, map[string]string{
		"a.yaml": "# inject\nmodules:\n  X: 1\n",
		"b.toml": "# inject\n[modules]\nX = 2\n",
	})
	_, err = New(context.Background(), testConfig(dup))
	var de *inject.DuplicateModuleError
	assert.ErrorAs(t, err, &de)
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer svc.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}

type warnLogger struct {
	logger.NopLogger
	warnings []string
}

func (l *warnLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func TestClose_ReportsDroppedEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Events.Buffer = 1
	log := &warnLogger{}
	svc, err := New(context.Background(), cfg, WithLogger(log))
	require.NoError(t, err)

	// A subscriber that never reads fills up after one event.
	_ = svc.bus.Subscribe()
	require.NoError(t, svc.Injector.Module("A", 1))
	require.NoError(t, svc.Injector.Module("B", 2))
	require.NoError(t, svc.Bootstrap(context.Background()))

	svc.Close()
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "lifecycle events")
}
