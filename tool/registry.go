package tool

import (
	"context"
	"sync"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// Registry is a name-keyed collection of tools with a stable catalog order.
//
// Re-registering a name REPLACES the previous tool while keeping its
// original ordinal position in the catalog. Replacement (rather than
// ignoring the second registration) lets callers hot-swap a tool
// implementation without clearing the registry; either way exactly one
// entry per name exists.
//
// Concurrency: guarded by an RWMutex, but the intended usage is
// single-writer: complete registration before concurrent dispatch begins.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	order  []string
	logger logging.Logger
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger used for registration diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:  make(map[string]*Tool),
		order:  []string{},
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Register adds a tool to the registry, replacing any previous tool with
// the same name.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		r.logger.Debug("tool.register.replace", "tool", t.Name())
	} else {
		r.order = append(r.order, t.Name())
	}

	r.tools[t.Name()] = t
}

// Get resolves a tool by name, failing with *core.NotFoundError for
// unregistered names.
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, &core.NotFoundError{Kind: "tool", Name: name}
	}

	return t, nil
}

// Definitions returns the tool catalog in first-registration order, in the
// wire shape a text provider forwards to a model backend.
func (r *Registry) Definitions() []core.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]core.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}

	return defs
}

// Handlers returns a name-keyed map of invocable handlers. Each handler
// routes through Tool.Call so schema validation applies on every
// invocation path.
func (r *Registry) Handlers() map[string]core.ToolHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make(map[string]core.ToolHandler, len(r.tools))
	for name, t := range r.tools {
		t := t
		handlers[name] = func(ctx context.Context, args map[string]any) (any, error) {
			return t.Call(ctx, args)
		}
	}

	return handlers
}

// Invoke resolves a tool by name and calls it with the given arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return t.Call(ctx, args)
}

// Names returns the registered tool names in first-registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// Clear removes every registered tool.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools = make(map[string]*Tool)
	r.order = []string{}
}
