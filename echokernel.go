// Package echokernel provides the orchestration hub of the framework: a
// Kernel that registers pluggable providers (text generation, embeddings,
// semantic memory, vector storage) and tools, then dispatches generation,
// embedding, memory and tool calls to the first matching registration.
// Most applications interact with the module by:
//  1. Creating a Kernel via New() (optionally injecting a structured logger)
//  2. Registering providers and tools
//  3. Composing agents from the agent package on top of the kernel
//
// Dispatch is deterministic by design: within a capability the first
// registered provider always wins and there is no fallback chain. Registration
// order is the only ordering input.
package echokernel

import (
	"context"
	"sync"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
	"github.com/echolabs/echokernel/tool"
)

// DefaultSearchLimit bounds memory searches when the caller does not supply
// a positive limit.
const DefaultSearchLimit = 5

// Options configures a Kernel.
type Options struct {
	// Logger receives kernel diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// Providers pre-seeds the kernel as if each had been passed to
	// RegisterProvider.
	Providers []core.Provider

	// Tools pre-seeds the tool registry.
	Tools []*tool.Tool
}

// Kernel is the process-wide-per-instance registry of providers and tools.
// Its collections are mutated only by explicit Register*/Clear* calls; the
// intended usage is single-writer: complete registration before beginning
// concurrent dispatch. The kernel holds no persistent state and dies with
// the owning process.
type Kernel struct {
	mu                 sync.RWMutex
	textProviders      []core.TextProvider
	embeddingProviders []core.EmbeddingProvider
	memoryProviders    []core.TextMemory
	storageProviders   []core.VectorStorage

	tools  *tool.Registry
	logger logging.Logger
}

// New creates a Kernel, empty unless pre-seeded through options.
func New(optFns ...func(o *Options)) *Kernel {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)

	k := &Kernel{
		tools: tool.NewRegistry(func(o *tool.RegistryOptions) {
			o.Logger = logger
		}),
		logger: logger,
	}

	for _, p := range opts.Providers {
		k.RegisterProvider(p)
	}

	for _, t := range opts.Tools {
		k.RegisterTool(t)
	}

	return k
}

// RegisterProvider buckets a provider by its declared capability. A
// provider instance already present in its bucket (identity comparison) is
// ignored, as is a provider declaring a capability outside the closed enum.
func (k *Kernel) RegisterProvider(p core.Provider) {
	if p == nil {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	switch p.Capability() {
	case core.CapabilityText:
		if tp, ok := p.(core.TextProvider); ok && !containsProvider(k.textProviders, tp) {
			k.textProviders = append(k.textProviders, tp)
			k.logger.Debug("kernel.provider.registered", "capability", "text", "count", len(k.textProviders))
		}
	case core.CapabilityEmbedding:
		if ep, ok := p.(core.EmbeddingProvider); ok && !containsProvider(k.embeddingProviders, ep) {
			k.embeddingProviders = append(k.embeddingProviders, ep)
			k.logger.Debug("kernel.provider.registered", "capability", "embedding", "count", len(k.embeddingProviders))
		}
	case core.CapabilityMemory:
		if mp, ok := p.(core.TextMemory); ok && !containsProvider(k.memoryProviders, mp) {
			k.memoryProviders = append(k.memoryProviders, mp)
			k.logger.Debug("kernel.provider.registered", "capability", "memory", "count", len(k.memoryProviders))
		}
	case core.CapabilityStorage:
		if sp, ok := p.(core.VectorStorage); ok && !containsProvider(k.storageProviders, sp) {
			k.storageProviders = append(k.storageProviders, sp)
			k.logger.Debug("kernel.provider.registered", "capability", "storage", "count", len(k.storageProviders))
		}
	default:
		// Unrecognized capability: ignored on purpose, the enum is closed.
		k.logger.Debug("kernel.provider.ignored", "capability", p.Capability())
	}
}

func containsProvider[T comparable](list []T, p T) bool {
	for _, existing := range list {
		if existing == p {
			return true
		}
	}
	return false
}

// RegisterTool adds a tool to the kernel registry. Re-registering a name
// replaces the previous tool (see tool.Registry).
func (k *Kernel) RegisterTool(t *tool.Tool) {
	if t == nil {
		return
	}
	k.tools.Register(t)
}

// Tools exposes the kernel's tool registry.
func (k *Kernel) Tools() *tool.Registry { return k.tools }

// Memory returns the first registered text memory provider, or nil.
func (k *Kernel) Memory() core.TextMemory {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if len(k.memoryProviders) == 0 {
		return nil
	}
	return k.memoryProviders[0]
}

// Storage returns the first registered vector storage provider, or nil.
func (k *Kernel) Storage() core.VectorStorage {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if len(k.storageProviders) == 0 {
		return nil
	}
	return k.storageProviders[0]
}

// ClearProviders removes every registered provider in all four buckets.
func (k *Kernel) ClearProviders() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.textProviders = nil
	k.embeddingProviders = nil
	k.memoryProviders = nil
	k.storageProviders = nil
}

// ClearTools removes every registered tool.
func (k *Kernel) ClearTools() { k.tools.Clear() }

// GenerateText generates text through the first registered text provider.
// Unless the caller overrides them, the full tool registry is advertised to
// the backend and wired for invocation ("tools always on"). Fails with
// *core.NoProviderError when no text provider is registered.
func (k *Kernel) GenerateText(ctx context.Context, prompt string, opts ...core.GenerateOption) (string, error) {
	cfg := core.DefaultGenerateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Tools == nil {
		cfg.Tools = k.tools.Definitions()
		cfg.ToolHandlers = k.tools.Handlers()
	}

	k.mu.RLock()
	providers := k.textProviders
	k.mu.RUnlock()

	if len(providers) == 0 {
		return "", &core.NoProviderError{Capability: core.CapabilityText}
	}

	return providers[0].GenerateText(ctx, prompt, cfg)
}

// GenerateEmbedding embeds text through the first registered embedding
// provider, failing with *core.NoProviderError when there is none.
func (k *Kernel) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	k.mu.RLock()
	providers := k.embeddingProviders
	k.mu.RUnlock()

	if len(providers) == 0 {
		return nil, &core.NoProviderError{Capability: core.CapabilityEmbedding}
	}

	return providers[0].GenerateEmbedding(ctx, text)
}

// AddTextToMemory persists a text through the first registered memory
// provider and returns its id.
func (k *Kernel) AddTextToMemory(ctx context.Context, text string, metadata map[string]any) (string, error) {
	mem := k.Memory()
	if mem == nil {
		return "", &core.NoProviderError{Capability: core.CapabilityMemory}
	}

	return mem.AddText(ctx, text, metadata)
}

// SearchMemory returns up to limit entries similar to the query from the
// first registered memory provider. A non-positive limit falls back to
// DefaultSearchLimit.
func (k *Kernel) SearchMemory(ctx context.Context, query string, limit int) ([]core.MemoryResult, error) {
	mem := k.Memory()
	if mem == nil {
		return nil, &core.NoProviderError{Capability: core.CapabilityMemory}
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	return mem.SearchSimilar(ctx, query, limit)
}

// GetMemory retrieves a stored memory entry by id (nil when absent).
func (k *Kernel) GetMemory(ctx context.Context, id string) (*core.MemoryEntry, error) {
	mem := k.Memory()
	if mem == nil {
		return nil, &core.NoProviderError{Capability: core.CapabilityMemory}
	}

	return mem.GetText(ctx, id)
}

// DeleteMemory removes a stored memory entry, reporting whether it existed.
func (k *Kernel) DeleteMemory(ctx context.Context, id string) (bool, error) {
	mem := k.Memory()
	if mem == nil {
		return false, &core.NoProviderError{Capability: core.CapabilityMemory}
	}

	return mem.DeleteText(ctx, id)
}

// ExecuteTool invokes a registered tool by name, failing with
// *core.NotFoundError for unregistered names.
func (k *Kernel) ExecuteTool(ctx context.Context, name string, args map[string]any) (any, error) {
	return k.tools.Invoke(ctx, name, args)
}
