package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/injector/core/inject"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlModules = `
# inject
modules:
  greeting: hello
  pi:
    value: 3.14
  message:
    factory: sprintf
    deps: [greeting, name]
    conf:
      format: "%s, %s!"
`

const tomlModules = `# inject
[modules.name]
value = "gopher"

[modules.tags]
factory = "list"
deps = ["greeting", "name"]
`

const hclModules = `// inject
module "banner" {
  factory = "template"
  deps    = ["greeting", "name"]
  conf    = { text = "{{.greeting}} {{.name}}" }
}

module "port" {
  value = 8080
}
`

const jsonModules = `{
  "inject": true,
  "modules": {
    "settings": {"value": {"debug": true}}
  }
}`

func TestHasMarker(t *testing.T) {
	assert.True(t, HasMarker([]byte("\n\n# inject\nmodules: {}")))
	assert.True(t, HasMarker([]byte("// inject <- makes the file injectable")))
	assert.True(t, HasMarker([]byte("/* inject */")))
	assert.False(t, HasMarker([]byte("modules: {}\n# inject")))
	assert.False(t, HasMarker([]byte("# injector config")))
	assert.False(t, HasMarker(nil))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "a/modules.yaml", yamlModules)
	j := writeFile(t, dir, "b/settings.json", jsonModules)
	writeFile(t, dir, "b/plain.json", `{"modules": {}}`)
	writeFile(t, dir, "b/notes.txt", "# inject")
	writeFile(t, dir, "node_modules/dep.yaml", yamlModules)
	writeFile(t, dir, "skip/modules.yaml", yamlModules)
	writeFile(t, dir, "a/unmarked.yaml", "modules: {}")

	files, err := Find(context.Background(), Options{
		Directories: []string{dir, filepath.Join(dir, "a")},
		Exclude:     []string{"skip"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{y, j}, files)
}

func TestFind_Extensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yaml", yamlModules)
	toml := writeFile(t, dir, "modules.toml", tomlModules)

	files, err := Find(context.Background(), Options{Directories: []string{dir}, Extensions: []string{"toml"}})
	require.NoError(t, err)
	assert.Equal(t, []string{toml}, files)
}

func TestFind_ExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yaml", yamlModules)
	writeFile(t, dir, "modules_test.yaml", yamlModules)

	files, err := Find(context.Background(), Options{Directories: []string{dir}, Exclude: []string{"*_test.yaml"}})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFind_VendoredDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "node_modules", "app")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	_, err := Find(context.Background(), Options{Directories: []string{dir}})
	assert.True(t, errors.Is(err, ErrVendoredDirectory))
}

func TestFind_MissingDirectory(t *testing.T) {
	_, err := Find(context.Background(), Options{Directories: []string{filepath.Join(t.TempDir(), "nope")}})
	assert.Error(t, err)
}

func TestFind_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yaml", yamlModules)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find(ctx, Options{Directories: []string{dir}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile_Formats(t *testing.T) {
	dir := t.TempDir()

	defs, err := ReadFile(writeFile(t, dir, "m.yaml", yamlModules))
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "greeting", defs[0].Name)
	assert.Equal(t, "hello", defs[0].Value)
	assert.Equal(t, "message", defs[1].Name)
	assert.Equal(t, "sprintf", defs[1].Factory)
	assert.Equal(t, []string{"greeting", "name"}, defs[1].Deps)
	assert.Equal(t, 3.14, defs[2].Value)

	defs, err = ReadFile(writeFile(t, dir, "m.toml", tomlModules))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "gopher", defs[0].Value)
	assert.Equal(t, "list", defs[1].Factory)

	defs, err = ReadFile(writeFile(t, dir, "m.hcl", hclModules))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "template", defs[0].Factory)
	assert.Equal(t, "{{.greeting}} {{.name}}", defs[0].Conf["text"])
	assert.Equal(t, int64(8080), defs[1].Value)

	defs, err = ReadFile(writeFile(t, dir, "m.json", jsonModules))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, map[string]any{"debug": true}, defs[0].Value)
}

func TestReadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFile(writeFile(t, dir, "both.yaml", "# inject\nmodules:\n  x:\n    value: 1\n    factory: list\n"))
	assert.ErrorContains(t, err, "exclusive")

	_, err = ReadFile(writeFile(t, dir, "empty.yaml", "# inject\nmodules:\n  x:\n    deps: [a]\n"))
	assert.ErrorContains(t, err, "needs a value or a factory")

	_, err = ReadFile(writeFile(t, dir, "bad.hcl", "# inject\nmodule \"x\" {\n  value = \n}\n"))
	assert.Error(t, err)

	_, err = ReadFile(writeFile(t, dir, "m.ini", "# inject"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadAndRegister(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", yamlModules)
	writeFile(t, dir, "more.toml", tomlModules)
	writeFile(t, dir, "views/banner.hcl", hclModules)
	writeFile(t, dir, "settings.json", jsonModules)

	defs, err := Load(context.Background(), Options{Directories: []string{dir}})
	require.NoError(t, err)

	inj := inject.New("test")
	require.NoError(t, Register(inj, NewCatalogue(), defs))
	_, err = inj.Bootstrap(context.Background())
	require.NoError(t, err)

	msg, err := inject.Get[string](inj, "message")
	require.NoError(t, err)
	assert.Equal(t, "hello, gopher!", msg)

	tags, err := inject.Get[[]any](inj, "tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello", "gopher"}, tags)

	banner, err := inject.Get[string](inj, "banner")
	require.NoError(t, err)
	assert.Equal(t, "hello gopher", banner)
}

func TestRegister_Duplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "# inject\nmodules:\n  x: 1\n")
	writeFile(t, dir, "b.yaml", "# inject\nmodules:\n  x: 2\n")
	defs, err := Load(context.Background(), Options{Directories: []string{dir}})
	require.NoError(t, err)

	err = Register(inject.New("test"), NewCatalogue(), defs)
	var dup *inject.DuplicateModuleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "x", dup.Name)
}
