// Package tools exposes the citation operations as a named tool set for
// agent frontends, with JSON-schema input descriptors and an HTTP
// surface.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pverm/zotpdb/internal/citation"
)

// ErrUnknownTool is returned when a call names a tool that is not
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is one callable operation. Handlers return plain data on success;
// errors are wrapped by the serving surface, never raised to the caller.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     func(ctx context.Context, args map[string]any) (any, error)
}

// Registry holds the available tools in registration order.
type Registry struct {
	names []string
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.names = append(r.names, t.Name)
	}
	r.tools[t.Name] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}

// Call invokes the named tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Handler(ctx, args)
}

// objectSchema builds a JSON schema for an object with the given
// properties and required names.
func objectSchema(props map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// prop builds a schema property with a type and description.
func prop(typ, description string) map[string]any {
	return map[string]any{
		"type":        typ,
		"description": description,
	}
}

// stringProp and friends keep the tool descriptors terse.
func stringProp(description string) map[string]any { return prop("string", description) }
func boolProp(description string) map[string]any   { return prop("boolean", description) }
func intProp(description string) map[string]any    { return prop("integer", description) }

// arrayProp builds a schema property for an array of strings.
func arrayProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// requireString returns args[name] as a non-empty string or a
// validation error.
func requireString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s is required", citation.ErrValidation, name)
	}
	return strings.TrimSpace(v), nil
}

// stringArg returns args[name] as a string, or def when absent.
func stringArg(args map[string]any, name, def string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

// boolArg returns args[name] as a bool, or def when absent.
func boolArg(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// intArg returns args[name] as an int, accepting the float64 JSON
// decoding produces, or def when absent.
func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// stringSliceArg returns args[name] as a string slice. Accepts a JSON
// array of strings or a single string.
func stringSliceArg(args map[string]any, name string) []string {
	switch v := args[name].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// sliceArg returns args[name] as a raw slice.
func sliceArg(args map[string]any, name string) []any {
	if v, ok := args[name].([]any); ok {
		return v
	}
	return nil
}
