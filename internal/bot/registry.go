package bot

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry holds registered modules. Module names are unique.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make([]Module, 0),
	}
}

// Register adds a module to the registry.
// It panics if a module with the same name is already registered.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.modules, func(existing Module) bool {
		return existing.Name() == m.Name()
	}) {
		panic("bot: Register called twice for module " + m.Name())
	}
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of all registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.modules)
}

// Global registry instance for module self-registration via init()
var globalRegistry = NewRegistry()

// Register adds a module to the global registry.
// This is typically called from module init() functions.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry resets the global registry.
// This is intended for testing purposes only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}

// Routes maps incoming interactions to module handlers.
type Routes struct {
	Commands     map[string]InteractionHandler // by command name
	Components   map[string]InteractionHandler // by custom ID prefix
	Autocomplete map[string]InteractionHandler // by command name
}

// BuildRoutes collects the handlers of modules, including those exposed
// through ComponentModule and AutocompleteModule. A key claimed by two
// modules is an error, as is a component prefix containing ':'.
func BuildRoutes(modules []Module) (Routes, error) {
	routes := Routes{
		Commands:     make(map[string]InteractionHandler),
		Components:   make(map[string]InteractionHandler),
		Autocomplete: make(map[string]InteractionHandler),
	}

	for _, mod := range modules {
		if err := addRoutes(routes.Commands, mod.Name(), "command", mod.CommandHandlers()); err != nil {
			return Routes{}, err
		}

		if cm, ok := mod.(ComponentModule); ok {
			handlers := cm.ComponentHandlers()
			for prefix := range handlers {
				if prefix == "" || strings.Contains(prefix, ":") {
					return Routes{}, fmt.Errorf("module %s: invalid component prefix %q", mod.Name(), prefix)
				}
			}
			if err := addRoutes(routes.Components, mod.Name(), "component", handlers); err != nil {
				return Routes{}, err
			}
		}

		if am, ok := mod.(AutocompleteModule); ok {
			err := addRoutes(routes.Autocomplete, mod.Name(), "autocomplete", am.AutocompleteHandlers())
			if err != nil {
				return Routes{}, err
			}
		}
	}

	return routes, nil
}

func addRoutes(dst map[string]InteractionHandler, module, kind string, src map[string]InteractionHandler) error {
	for _, key := range slices.Sorted(maps.Keys(src)) {
		if _, taken := dst[key]; taken {
			return fmt.Errorf("module %s: %s %q is already handled by another module", module, kind, key)
		}
		dst[key] = src[key]
	}
	return nil
}
