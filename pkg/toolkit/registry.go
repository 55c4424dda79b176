package toolkit

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for tool registration.
var (
	// ErrInvalidTool is returned when a tool is missing a name or entry point.
	ErrInvalidTool = errors.New("tool needs a name and an entry point")

	// ErrDuplicateTool is returned when a name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")
)

// Registry holds the builtin tools known to a runner instance. It is an
// explicit value wired into the dispatcher, not a hidden package-level
// side-table.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering a nil entry point, an empty name, or a
// duplicate name is an error.
func (r *Registry) Register(t *Tool) error {
	if t == nil || t.Name == "" || t.Run == nil {
		return ErrInvalidTool
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
