package discovery

import (
	"path/filepath"
	"strings"

	"github.com/kilianp07/injector/core/logger"
)

// Options controls where module files are looked up.
type Options struct {
	// Directories are walked recursively.
	Directories []string
	// Exclude lists absolute or relative paths, base names or glob
	// patterns matched against base names.
	Exclude []string
	// Extensions restricts the file extensions considered. Empty means
	// DefaultExtensions.
	Extensions []string
	Log        logger.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Log == nil {
		o.Log = logger.NopLogger{}
	}
	return o
}

func (o Options) excluded(path string) bool {
	base := filepath.Base(path)
	for _, ex := range o.Exclude {
		if ex == "" {
			continue
		}
		if ex == base {
			return true
		}
		if abs, err := filepath.Abs(ex); err == nil && abs == path {
			return true
		}
		if ok, _ := filepath.Match(ex, base); ok {
			return true
		}
	}
	return false
}

func (o Options) hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range o.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
