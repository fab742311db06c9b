package core

import "context"

// Capability enumerates the closed set of provider categories the kernel
// understands. Each provider declares exactly one capability statically via
// the Provider interface; the kernel buckets registrations by this tag
// instead of probing the value with reflection.
type Capability int

const (
	// CapabilityText marks providers that generate text (and drive the
	// tool-calling round trip).
	CapabilityText Capability = iota
	// CapabilityEmbedding marks providers that turn text into vectors.
	CapabilityEmbedding
	// CapabilityMemory marks semantic text memory providers.
	CapabilityMemory
	// CapabilityStorage marks raw vector storage providers.
	CapabilityStorage
)

// String returns the lowercase capability name used in log fields and errors.
func (c Capability) String() string {
	switch c {
	case CapabilityText:
		return "text"
	case CapabilityEmbedding:
		return "embedding"
	case CapabilityMemory:
		return "memory"
	case CapabilityStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Provider is the minimal contract every registrable backend satisfies.
// The declared capability decides which kernel bucket the provider joins;
// it is inspected exactly once, at registration time.
type Provider interface {
	Capability() Capability
}

// TextProvider generates text from a prompt. Implementations own the
// tool-calling round trip: when cfg carries tool definitions the provider
// must let the backend request tool invocations, execute them through the
// supplied handlers and feed results back until the backend produces a
// final answer.
type TextProvider interface {
	Provider

	GenerateText(ctx context.Context, prompt string, cfg GenerateConfig) (string, error)
}

// EmbeddingProvider turns a text into a dense float vector.
type EmbeddingProvider interface {
	Provider

	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// MemoryResult is one ranked hit from a semantic memory search.
type MemoryResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MemoryEntry is a stored text retrieved by id.
type MemoryEntry struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TextMemory is a semantic store of texts. Every entry is backed by exactly
// one vector in the underlying storage; implementations must keep the
// text/vector mapping bidirectionally consistent and report corruption
// (orphaned vectors, dangling ids) as errors instead of hiding it.
type TextMemory interface {
	Provider

	// AddText persists a text with optional metadata and returns its id.
	AddText(ctx context.Context, text string, metadata map[string]any) (string, error)

	// SearchSimilar returns up to limit entries ranked by similarity.
	SearchSimilar(ctx context.Context, query string, limit int) ([]MemoryResult, error)

	// GetText returns the entry for id, or nil when absent.
	GetText(ctx context.Context, id string) (*MemoryEntry, error)

	// DeleteText removes the entry and its backing vector. It reports
	// whether an entry was actually deleted.
	DeleteText(ctx context.Context, id string) (bool, error)
}

// VectorResult is one ranked hit from a vector similarity search.
type VectorResult struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorEntry is a stored vector retrieved by id.
type VectorEntry struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorStorage is the narrow seam to an external vector index (embedded or
// remote). TextMemory implementations compose an EmbeddingProvider with a
// VectorStorage; the index internals are out of scope for the kernel.
type VectorStorage interface {
	Provider

	// Initialize prepares the backing index for vectors of the given
	// dimension. Implementations may instead initialize lazily on the
	// first AddVector.
	Initialize(ctx context.Context, dimension int) error

	// AddVector stores a vector with metadata and returns its id.
	AddVector(ctx context.Context, vector []float32, metadata map[string]any) (string, error)

	// SearchVectors returns up to limit vectors ranked by similarity to
	// the query vector.
	SearchVectors(ctx context.Context, query []float32, limit int) ([]VectorResult, error)

	// GetVector returns the stored vector for id, or nil when absent.
	GetVector(ctx context.Context, id string) (*VectorEntry, error)

	// DeleteVector removes a vector, reporting whether it existed.
	DeleteVector(ctx context.Context, id string) (bool, error)
}
