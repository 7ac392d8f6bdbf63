package tools

import (
	"sort"
	"sync"
)

// Registry holds the fixed catalog of tools and their handlers. It is
// populated once at startup and read-mostly afterwards; the lock only
// matters during registration.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	handlers map[string]Handler
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		handlers: make(map[string]Handler),
	}
}

// Register adds a tool and its handler. Registration is idempotent by name:
// re-registering an existing name is a no-op, not an error.
func (r *Registry) Register(tool Tool, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return
	}
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// Get returns the tool and handler registered under name.
func (r *Registry) Get(name string) (Tool, Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return Tool{}, nil, false
	}
	return tool, r.handlers[name], true
}

// List returns all registered tools in stable name order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
