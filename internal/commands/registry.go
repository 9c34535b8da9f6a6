package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
	cmds   []Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds c under its name and aliases. Names are case-insensitive
// and must not collide with an existing name or alias.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return fmt.Errorf("command %q: empty name or alias", c.Name())
		}
		if prev, exists := r.byName[k]; exists {
			return fmt.Errorf("command %q: %q already taken by %q", c.Name(), k, prev.Name())
		}
		keys[i] = k
	}

	for _, k := range keys {
		r.byName[k] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// All returns every registered command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.cmds)
	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// DefaultRegistry holds the commands registered by this package's init funcs.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
