package memory

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/echolabs/echokernel/core"
)

// ChromemStorageOptions configure the embedded chromem-go storage.
type ChromemStorageOptions struct {
	// Collection names the chromem collection. Defaults to "echokernel".
	Collection string

	// PersistPath, when set, backs the database with an on-disk store
	// instead of keeping everything in memory.
	PersistPath string

	// Compress gzips the persisted store. Only meaningful with
	// PersistPath.
	Compress bool
}

// ChromemStorage implements core.VectorStorage on the embedded chromem-go
// vector database. Vectors are pre-computed by the caller; the collection's
// embedding function is never invoked.
type ChromemStorage struct {
	db        *chromem.DB
	name      string
	dimension int

	mu  sync.Mutex
	col *chromem.Collection
}

var _ core.VectorStorage = (*ChromemStorage)(nil)

// NewChromemStorage creates an embedded vector storage.
func NewChromemStorage(optFns ...func(o *ChromemStorageOptions)) (*ChromemStorage, error) {
	opts := ChromemStorageOptions{
		Collection: "echokernel",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var (
		db  *chromem.DB
		err error
	)

	if opts.PersistPath != "" {
		db, err = chromem.NewPersistentDB(opts.PersistPath, opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("open persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemStorage{
		db:   db,
		name: opts.Collection,
	}, nil
}

// Capability implements core.Provider.
func (s *ChromemStorage) Capability() core.Capability {
	return core.CapabilityStorage
}

// Initialize records the expected vector dimension. The collection itself
// is created lazily on first use.
func (s *ChromemStorage) Initialize(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dimension = dimension

	return nil
}

func (s *ChromemStorage) collection() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col != nil {
		return s.col, nil
	}

	// Vectors arrive pre-computed, so the embedding function must never
	// run.
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("chromem storage received no pre-computed vector")
	}

	col, err := s.db.GetOrCreateCollection(s.name, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("get/create collection %q: %w", s.name, err)
	}

	s.col = col

	return col, nil
}

// AddVector stores the vector under a fresh uuid and returns it.
func (s *ChromemStorage) AddVector(ctx context.Context, vector []float32, metadata map[string]any) (string, error) {
	if s.dimension > 0 && len(vector) != s.dimension {
		return "", &core.ValidationError{
			Field:   "vector",
			Value:   len(vector),
			Message: fmt.Sprintf("expected dimension %d", s.dimension),
		}
	}

	col, err := s.collection()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	doc := chromem.Document{
		ID:        id,
		Metadata:  stringifyMetadata(metadata),
		Embedding: vector,
	}

	if err := col.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}

	return id, nil
}

// SearchVectors ranks stored vectors by similarity to the query vector.
func (s *ChromemStorage) SearchVectors(ctx context.Context, query []float32, limit int) ([]core.VectorResult, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	// chromem rejects a topK larger than the collection.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	if limit > count {
		limit = count
	}

	hits, err := col.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	results := make([]core.VectorResult, len(hits))
	for i, hit := range hits {
		results[i] = core.VectorResult{
			ID:       hit.ID,
			Score:    hit.Similarity,
			Metadata: anyMetadata(hit.Metadata),
		}
	}

	return results, nil
}

// GetVector returns the stored vector, or nil when the id is unknown.
func (s *ChromemStorage) GetVector(ctx context.Context, id string) (*core.VectorEntry, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	// chromem reports an unknown id as an error; treat it as absence.
	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return nil, nil
	}

	return &core.VectorEntry{
		ID:       doc.ID,
		Vector:   doc.Embedding,
		Metadata: anyMetadata(doc.Metadata),
	}, nil
}

// DeleteVector removes the vector, reporting whether it existed.
func (s *ChromemStorage) DeleteVector(ctx context.Context, id string) (bool, error) {
	col, err := s.collection()
	if err != nil {
		return false, err
	}

	if _, err := col.GetByID(ctx, id); err != nil {
		return false, nil
	}

	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}

	return true, nil
}

func stringifyMetadata(metadata map[string]any) map[string]string {
	if len(metadata) == 0 {
		return nil
	}

	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = fmt.Sprint(v)
	}

	return out
}

func anyMetadata(metadata map[string]string) map[string]any {
	if len(metadata) == 0 {
		return nil
	}

	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}

	return out
}
