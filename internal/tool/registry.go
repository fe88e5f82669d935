// Package tool holds a minimal registry for callable tools: named operations
// with a described parameter list and a JSON-arguments handler.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when no tool is registered under the invoked name.
var ErrNotFound = errors.New("tool: not found")

// Param documents one argument a tool accepts.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// HandlerFunc executes a tool against raw JSON arguments. The returned value
// is serialized to the caller as-is.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is one registered operation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []Param     `json:"params"`
	Handler     HandlerFunc `json:"-"`
}

// Registry maps tool names to their handlers. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its name. Duplicate names are a wiring mistake
// and rejected.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("tool: name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool: %s has no handler", t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool: %s already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Invoke runs the named tool with the given JSON arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t.Handler(ctx, args)
}

// List returns every registered tool in registration order. Handlers are
// stripped; the result is a descriptor, not an invocable.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		t.Handler = nil
		out = append(out, t)
	}
	return out
}
