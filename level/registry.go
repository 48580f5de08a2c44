package level

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
)

//go:embed levels/*.json
var builtinFS embed.FS

// Registry holds level definitions by name.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Builtin returns a registry preloaded with the embedded levels.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	entries, err := builtinFS.ReadDir("levels")
	if err != nil {
		return nil, fmt.Errorf("reading embedded levels: %w", err)
	}
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("levels", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		def, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := r.Add(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers def. Names must be unique.
func (r *Registry) Add(def *Def) error {
	if _, dup := r.defs[def.Name]; dup {
		return fmt.Errorf("duplicate level %q", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Get looks up a level by name.
func (r *Registry) Get(name string) (*Def, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named level, or loads nameOrPath from disk. A loaded file
// replaces any registered level with the same name.
func (r *Registry) Resolve(nameOrPath string) (*Def, error) {
	if def, ok := r.defs[nameOrPath]; ok {
		return def, nil
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("unknown level %q", nameOrPath)
	}
	def, err := LoadFile(nameOrPath)
	if err != nil {
		return nil, err
	}
	r.defs[def.Name] = def
	return def, nil
}
