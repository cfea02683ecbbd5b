package tools

import (
	"context"
	"fmt"

	"github.com/lectern-ai/lectern/internal/model"
)

// Registry holds the capabilities available to one question-answering turn.
// It is not safe for concurrent use; callers build one registry per turn so
// source tracking never leaks across turns.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool keyed by its declared name. Duplicate registration is
// an error rather than a silent overwrite.
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// ExecuteTool dispatches to the named tool. An unknown name yields ordinary
// result text so the orchestrator can feed it back to the model instead of
// aborting the turn.
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) string {
	tool, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}
	return tool.Execute(ctx, args)
}

// LastSources concatenates the sources harvested since the last reset, in
// registration order.
func (r *Registry) LastSources() []model.Source {
	var sources []model.Source
	for _, name := range r.order {
		sources = append(sources, r.tools[name].LastSources()...)
	}
	return sources
}

func (r *Registry) ResetSources() {
	for _, name := range r.order {
		r.tools[name].ResetSources()
	}
}
