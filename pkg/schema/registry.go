package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/guptam/altimeter/pkg/logging"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Registry maps resource type names to compiled types.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*ResourceType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*ResourceType)}
}

// Builtin returns a registry holding the resource types shipped with the binary.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadFS(builtinFS, "builtin/*.yaml"); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a compiled type. Registering a name twice replaces the
// earlier type, so user schemas can override builtin ones.
func (r *Registry) Register(rt *ResourceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[rt.Name]; exists {
		logging.Debug("overriding resource type", "type", rt.Name)
	}
	r.types[rt.Name] = rt
}

// AddFile compiles and registers every type in f.
func (r *Registry) AddFile(f *File) error {
	compiled := make([]*ResourceType, 0, len(f.ResourceTypes))
	for _, decl := range f.ResourceTypes {
		rt, err := Compile(decl)
		if err != nil {
			return err
		}
		compiled = append(compiled, rt)
	}
	for _, rt := range compiled {
		r.Register(rt)
	}
	return nil
}

// LoadFile parses, compiles and registers a schema file.
func (r *Registry) LoadFile(p string) error {
	f, err := LoadFile(p)
	if err != nil {
		return err
	}
	if err := r.AddFile(f); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	logging.Debug("loaded schema file", "path", p, "types", len(f.ResourceTypes))
	return nil
}

// LoadFS loads every file in fsys matching pattern, in lexical order.
func (r *Registry) LoadFS(fsys fs.FS, pattern string) error {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", m, err)
		}
		f, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path.Base(m), err)
		}
		if err := r.AddFile(f); err != nil {
			return fmt.Errorf("%s: %w", path.Base(m), err)
		}
	}
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*ResourceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.types[name]
	return rt, ok
}

// Names returns every registered type name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
