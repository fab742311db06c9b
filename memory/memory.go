// Package memory provides semantic text memory built from an embedding
// provider and a vector storage backend, plus storage implementations for
// the embedded chromem-go index and a remote Qdrant instance.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/echolabs/echokernel/core"
	"github.com/echolabs/echokernel/logging"
)

// ConsistencyError reports a broken text/vector mapping: a vector surfaced
// by the storage backend has no stored text, or the reverse.
type ConsistencyError struct {
	ID string
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("memory entry %s: text/vector mapping is inconsistent", e.ID)
}

// VectorMemoryOptions configure a VectorMemory.
type VectorMemoryOptions struct {
	// Logger receives consistency diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// VectorMemory implements core.TextMemory by pairing each stored text with
// exactly one vector in the backing storage. The embedding provider turns
// texts and queries into vectors; the storage backend owns similarity
// ranking. Texts are kept in process, keyed by the storage-assigned id.
type VectorMemory struct {
	embedder core.EmbeddingProvider
	storage  core.VectorStorage
	logger   logging.Logger

	mu    sync.RWMutex
	texts map[string]string
	meta  map[string]map[string]any
}

var _ core.TextMemory = (*VectorMemory)(nil)

// NewVectorMemory creates a semantic memory over the given embedder and
// vector storage.
func NewVectorMemory(embedder core.EmbeddingProvider, storage core.VectorStorage, optFns ...func(o *VectorMemoryOptions)) *VectorMemory {
	opts := VectorMemoryOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &VectorMemory{
		embedder: embedder,
		storage:  storage,
		logger:   logging.OrNoOp(opts.Logger),
		texts:    make(map[string]string),
		meta:     make(map[string]map[string]any),
	}
}

// Capability implements core.Provider.
func (m *VectorMemory) Capability() core.Capability {
	return core.CapabilityMemory
}

// AddText embeds the text, stores the vector, and records the text under
// the storage-assigned id.
func (m *VectorMemory) AddText(ctx context.Context, text string, metadata map[string]any) (string, error) {
	vec, err := m.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed text: %w", err)
	}

	id, err := m.storage.AddVector(ctx, vec, metadata)
	if err != nil {
		return "", fmt.Errorf("store vector: %w", err)
	}

	m.mu.Lock()
	m.texts[id] = text
	if metadata != nil {
		m.meta[id] = metadata
	}
	m.mu.Unlock()

	return id, nil
}

// SearchSimilar embeds the query and ranks stored texts by vector
// similarity. A hit whose vector has no stored text is corruption and is
// reported as a ConsistencyError.
func (m *VectorMemory) SearchSimilar(ctx context.Context, query string, limit int) ([]core.MemoryResult, error) {
	vec, err := m.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := m.storage.SearchVectors(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]core.MemoryResult, 0, len(hits))

	for _, hit := range hits {
		text, ok := m.texts[hit.ID]
		if !ok {
			m.logger.Error("memory.orphaned_vector", "id", hit.ID)
			return nil, &ConsistencyError{ID: hit.ID}
		}

		results = append(results, core.MemoryResult{
			ID:       hit.ID,
			Text:     text,
			Score:    hit.Score,
			Metadata: m.meta[hit.ID],
		})
	}

	return results, nil
}

// GetText returns the stored entry, or nil when the id is unknown.
func (m *VectorMemory) GetText(ctx context.Context, id string) (*core.MemoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	text, ok := m.texts[id]
	if !ok {
		return nil, nil
	}

	return &core.MemoryEntry{
		ID:       id,
		Text:     text,
		Metadata: m.meta[id],
	}, nil
}

// DeleteText removes the backing vector first, then the text, so a failed
// vector delete never leaves an orphaned vector behind. A missing half of
// the mapping is logged but does not fail the delete.
func (m *VectorMemory) DeleteText(ctx context.Context, id string) (bool, error) {
	vectorDeleted, err := m.storage.DeleteVector(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete vector: %w", err)
	}

	m.mu.Lock()
	_, textExisted := m.texts[id]
	delete(m.texts, id)
	delete(m.meta, id)
	m.mu.Unlock()

	if vectorDeleted != textExisted {
		m.logger.Warn("memory.mapping_half_missing", "id", id, "vector", vectorDeleted, "text", textExisted)
	}

	return vectorDeleted || textExisted, nil
}
