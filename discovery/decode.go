package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/kilianp07/injector/core/factory"
)

// decodeFunc parses a module file into a generic document.
type decodeFunc func(path string, src []byte) (map[string]any, error)

var decoders = map[string]decodeFunc{
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".json": decodeJSON,
	".toml": decodeTOML,
	".hcl":  decodeHCL,
}

func decodeYAML(_ string, src []byte) (map[string]any, error) {
	return yaml.Parser().Unmarshal(src)
}

func decodeJSON(_ string, src []byte) (map[string]any, error) {
	return json.Parser().Unmarshal(src)
}

func decodeTOML(_ string, src []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(in map[string]any, out any) error {
	return factory.Decode(in, out)
}

// ReadFile decodes the module entries of a single file.
func ReadFile(path string) ([]Definition, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dec, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported module file extension %q", path, ext)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := dec(path, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return definitions(path, doc)
}

// Load finds every module file under opts and decodes its entries. The
// result is ordered by file, then by module name.
func Load(ctx context.Context, opts Options) ([]Definition, error) {
	files, err := Find(ctx, opts)
	if err != nil {
		return nil, err
	}
	var defs []Definition
	for _, f := range files {
		d, err := ReadFile(f)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d...)
	}
	return defs, nil
}
