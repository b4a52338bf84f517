package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrVendoredDirectory is returned when a modules directory lies inside a
// vendored or dependency tree.
var ErrVendoredDirectory = errors.New("cannot load modules from a vendored directory")

// DefaultExtensions are the module file extensions recognized when none are
// configured.
var DefaultExtensions = []string{".yaml", ".yml", ".json", ".toml", ".hcl"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
}

// Find walks dirs and returns the module files found, sorted and without
// duplicates. Symbolic links are not followed.
func Find(ctx context.Context, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	seen := make(map[string]bool)
	var files []string
	for _, dir := range opts.Directories {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", dir, err)
		}
		if vendored(root) {
			return nil, fmt.Errorf("%w: %s", ErrVendoredDirectory, dir)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("modules directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("modules directory %s is not a directory", dir)
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && (skipDirs[d.Name()] || opts.excluded(path)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || opts.excluded(path) || !opts.hasExtension(path) {
				return nil
			}
			if seen[path] {
				return nil
			}
			ok, err := isModuleFile(path)
			if err != nil {
				return err
			}
			if ok {
				seen[path] = true
				files = append(files, path)
				opts.Log.Debugf("found module file %s", path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func vendored(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

func isModuleFile(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return hasJSONMarker(b), nil
	}
	return HasMarker(b), nil
}
