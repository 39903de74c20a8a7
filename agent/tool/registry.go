package tool

import (
	"context"
	"fmt"
	"strings"
)

// Handler executes one tool over already-validated arguments. Business-rule
// failures come back as wrapped contract sentinel errors, never panics.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Definition describes one registered tool. Definitions are immutable once
// the registry is built.
type Definition struct {
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
	Handler      Handler
}

// Registry maps tool names to definitions. It is constructed once at
// startup and read-only afterwards; lookups are by name and List preserves
// registration order for reproducible discovery responses.
type Registry struct {
	order []string
	defs  map[string]Definition
}

func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs: make(map[string]Definition, len(defs)),
	}
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("tool definition has empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q has nil handler", name)
		}
		if _, exists := r.defs[name]; exists {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}
		r.defs[name] = def
		r.order = append(r.order, name)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Descriptors returns the discovery view of the registry. Schemas are
// deep-copied so callers cannot mutate the registered definitions through
// the returned maps.
func (r *Registry) Descriptors() []map[string]any {
	out := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		out = append(out, map[string]any{
			"name":        def.Name,
			"description": def.Description,
			"inputSchema": cloneValue(def.InputSchema),
		})
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
