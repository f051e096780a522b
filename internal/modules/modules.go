// Package modules resolves the global hook and reporter modules named in the
// configuration. A module is either registered statically from Go code or a
// .go source file interpreted at runtime.
package modules

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/reporter"
)

// Export is a named value exposed by a module
type Export struct {
	Name  string
	Value any
}

// GlobalHook runs once before or after all tests
type GlobalHook func(ctx context.Context) error

// ExportShapeError reports a module that does not export exactly one value
// of the expected kind
type ExportShapeError struct {
	File string
	Want string
}

func (e *ExportShapeError) Error() string {
	return fmt.Sprintf("%s: file must export a single %s.", e.File, e.Want)
}

var registry = struct {
	sync.RWMutex
	modules map[string][]Export
}{modules: make(map[string][]Export)}

// Register makes exports available under path. Relative paths are matched
// against the configured root directory.
func Register(path string, exports ...Export) {
	registry.Lock()
	defer registry.Unlock()
	registry.modules[filepath.Clean(path)] = exports
}

// Unregister removes a module registered with Register
func Unregister(path string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.modules, filepath.Clean(path))
}

// Registered returns the registered module paths in sorted order
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()
	paths := make([]string, 0, len(registry.modules))
	for p := range registry.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func lookup(cfg *config.Config, file string) (string, []Export, bool) {
	registry.RLock()
	defer registry.RUnlock()
	if exports, ok := registry.modules[filepath.Clean(file)]; ok {
		return file, exports, true
	}
	resolved := cfg.ResolvePath(file)
	if exports, ok := registry.modules[filepath.Clean(resolved)]; ok {
		return resolved, exports, true
	}
	return resolved, nil, false
}

// LoadGlobalHook resolves file to a hook function
func LoadGlobalHook(ctx context.Context, cfg *config.Config, file string) (GlobalHook, error) {
	path, exports, ok := lookup(cfg, file)
	if !ok {
		return loadScriptHook(ctx, path)
	}

	shapeErr := &ExportShapeError{File: path, Want: "function"}
	if len(exports) != 1 {
		return nil, shapeErr
	}
	switch fn := exports[0].Value.(type) {
	case GlobalHook:
		return fn, nil
	case func(context.Context) error:
		return fn, nil
	case func() error:
		return func(context.Context) error { return fn() }, nil
	}
	return nil, shapeErr
}

// LoadReporter resolves file to a reporter instance
func LoadReporter(ctx context.Context, cfg *config.Config, file string) (reporter.Reporter, error) {
	path, exports, ok := lookup(cfg, file)
	if !ok {
		return loadScriptReporter(ctx, path)
	}

	shapeErr := &ExportShapeError{File: path, Want: "class"}
	if len(exports) != 1 {
		return nil, shapeErr
	}
	switch v := exports[0].Value.(type) {
	case reporter.Factory:
		return v(), nil
	case func() reporter.Reporter:
		return v(), nil
	case reporter.Reporter:
		return v, nil
	}
	return nil, shapeErr
}

// IsModulePath reports whether a reporter name refers to a module file
// rather than a built-in reporter
func IsModulePath(name string) bool {
	return strings.ContainsRune(name, '/') || strings.HasSuffix(name, ".go") || strings.HasPrefix(name, ".")
}
