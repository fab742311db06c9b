package memory

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/echolabs/echokernel/core"
)

// QdrantStorageOptions configure the remote Qdrant storage.
type QdrantStorageOptions struct {
	// Collection names the Qdrant collection. Defaults to "echokernel".
	Collection string

	// APIKey authenticates against a secured Qdrant instance.
	APIKey string

	// UseTLS enables transport security on the gRPC connection.
	UseTLS bool
}

// QdrantStorage implements core.VectorStorage against a remote Qdrant
// instance over gRPC. Points are addressed by uuid.
type QdrantStorage struct {
	client *qdrant.Client
	name   string
}

var _ core.VectorStorage = (*QdrantStorage)(nil)

// NewQdrantStorage connects to a Qdrant instance at addr (host:port).
func NewQdrantStorage(addr string, optFns ...func(o *QdrantStorageOptions)) (*QdrantStorage, error) {
	opts := QdrantStorageOptions{
		Collection: "echokernel",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant port %q: %w", portStr, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &QdrantStorage{
		client: client,
		name:   opts.Collection,
	}, nil
}

// Capability implements core.Provider.
func (s *QdrantStorage) Capability() core.Capability {
	return core.CapabilityStorage
}

// Close releases the underlying gRPC connection.
func (s *QdrantStorage) Close() error {
	return s.client.Close()
}

// Initialize creates the collection for vectors of the given dimension if
// it does not exist yet.
func (s *QdrantStorage) Initialize(ctx context.Context, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, s.name)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

// AddVector upserts the vector under a fresh uuid and returns it.
func (s *QdrantStorage) AddVector(ctx context.Context, vector []float32, metadata map[string]any) (string, error) {
	id := uuid.NewString()

	payload, err := toPayload(metadata)
	if err != nil {
		return "", err
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.name,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("upsert point: %w", err)
	}

	return id, nil
}

// SearchVectors ranks stored vectors by similarity to the query vector.
func (s *QdrantStorage) SearchVectors(ctx context.Context, query []float32, limit int) ([]core.VectorResult, error) {
	resp, err := s.client.GetPointsClient().Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.name,
		Vector:         query,
		Limit:          uint64(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	results := make([]core.VectorResult, len(resp.Result))
	for i, point := range resp.Result {
		results[i] = core.VectorResult{
			ID:       pointID(point.Id),
			Score:    point.Score,
			Metadata: fromPayload(point.Payload),
		}
	}

	return results, nil
}

// GetVector returns the stored vector, or nil when the id is unknown.
func (s *QdrantStorage) GetVector(ctx context.Context, id string) (*core.VectorEntry, error) {
	resp, err := s.client.GetPointsClient().Get(ctx, &qdrant.GetPoints{
		CollectionName: s.name,
		Ids:            []*qdrant.PointId{qdrant.NewID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get point: %w", err)
	}

	if len(resp.Result) == 0 {
		return nil, nil
	}

	point := resp.Result[0]

	return &core.VectorEntry{
		ID:       pointID(point.Id),
		Vector:   denseVector(point.Vectors),
		Metadata: fromPayload(point.Payload),
	}, nil
}

// DeleteVector removes the point, reporting whether it existed.
func (s *QdrantStorage) DeleteVector(ctx context.Context, id string) (bool, error) {
	existing, err := s.GetVector(ctx, id)
	if err != nil {
		return false, err
	}

	if existing == nil {
		return false, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.name,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewID(id)},
				},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("delete point: %w", err)
	}

	return true, nil
}

func pointID(id *qdrant.PointId) string {
	if uid := id.GetUuid(); uid != "" {
		return uid
	}

	return fmt.Sprintf("%d", id.GetNum())
}

func denseVector(vectors *qdrant.VectorsOutput) []float32 {
	out := vectors.GetVector()
	if out == nil {
		return nil
	}

	if dense, ok := out.Vector.(*qdrant.VectorOutput_Dense); ok && dense.Dense != nil {
		return dense.Dense.Data
	}

	return nil
}

func toPayload(metadata map[string]any) (map[string]*qdrant.Value, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	payload := make(map[string]*qdrant.Value, len(metadata))

	for k, v := range metadata {
		val, err := qdrant.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("convert metadata %q: %w", k, err)
		}
		payload[k] = val
	}

	return payload, nil
}

func fromPayload(payload map[string]*qdrant.Value) map[string]any {
	if len(payload) == 0 {
		return nil
	}

	metadata := make(map[string]any, len(payload))

	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			metadata[k] = kind.StringValue
		case *qdrant.Value_BoolValue:
			metadata[k] = kind.BoolValue
		case *qdrant.Value_IntegerValue:
			metadata[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			metadata[k] = kind.DoubleValue
		}
	}

	return metadata
}
