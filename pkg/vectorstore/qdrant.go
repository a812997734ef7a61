package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/yilane/rag-related/pkg/types"
)

// QdrantStore implements Store over a hosted Qdrant collection via gRPC.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
}

// QdrantConfig configures a QdrantStore.
type QdrantConfig struct {
	// Addr is the gRPC endpoint, e.g. "localhost:6334".
	Addr       string
	Collection string
	// Dimension is required when the collection has to be created.
	Dimension int
	// Recreate drops and recreates the collection on connect.
	Recreate bool
}

// Payload keys used for stored chunks.
const (
	payloadContent    = "content"
	payloadDocumentID = "document_id"
)

// NewQdrantStore connects to Qdrant and ensures the collection exists.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	conn, err := grpc.Dial(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		conn:        conn,
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		collection:  cfg.Collection,
	}

	if cfg.Recreate {
		// Ignore the error: the collection may not exist yet.
		_, _ = s.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: cfg.Collection})
	}

	if cfg.Dimension > 0 {
		exists, err := s.collections.CollectionExists(ctx, &qdrant.CollectionExistsRequest{
			CollectionName: cfg.Collection,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("check qdrant collection %q: %w", cfg.Collection, err)
		}
		if !exists.GetResult().GetExists() {
			_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
				CollectionName: cfg.Collection,
				VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(cfg.Dimension),
						Distance: qdrant.Distance_Cosine,
					},
				}},
			})
			if err != nil {
				conn.Close()
				return nil, fmt.Errorf("create qdrant collection %q: %w", cfg.Collection, err)
			}
		}
	}

	return s, nil
}

// Insert upserts chunks as points keyed by UUID.
func (s *QdrantStore) Insert(ctx context.Context, chunks []*types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s", ErrMissingEmbedding, chunk.ID)
		}

		pointID := chunk.ID
		if _, err := uuid.Parse(pointID); err != nil {
			// Qdrant point IDs must be UUIDs or integers; derive a stable
			// UUID from the chunk ID.
			pointID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunk.ID)).String()
		}

		payload := map[string]*qdrant.Value{
			payloadContent:    {Kind: &qdrant.Value_StringValue{StringValue: chunk.Content}},
			payloadDocumentID: {Kind: &qdrant.Value_StringValue{StringValue: chunk.DocumentID}},
			"chunk_id":        {Kind: &qdrant.Value_StringValue{StringValue: chunk.ID}},
		}
		for key, value := range chunk.Metadata {
			if v := qdrantValue(value); v != nil {
				payload[key] = v
			}
		}

		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: chunk.Embedding}}},
			Payload: payload,
		})
	}

	wait := true
	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Search queries the collection and rebuilds chunks from point payloads.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, config *types.SearchConfig) ([]*types.SearchResult, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	req := &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(config.TopK),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	}
	if config.MinScore > 0 {
		threshold := float32(config.MinScore)
		req.ScoreThreshold = &threshold
	}
	// Filters run server-side so the top-K limit applies after filtering;
	// values the wire format cannot express are checked on the results.
	filter, rest := qdrantFilter(config.Filters)
	req.Filter = filter

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]*types.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := point.GetPayload()
		chunk := &types.Chunk{
			Content:    payload[payloadContent].GetStringValue(),
			DocumentID: payload[payloadDocumentID].GetStringValue(),
			Metadata:   map[string]interface{}{},
		}
		if id, ok := payload["chunk_id"]; ok {
			chunk.ID = id.GetStringValue()
		}
		for key, value := range payload {
			switch key {
			case payloadContent, payloadDocumentID, "chunk_id":
				continue
			}
			switch kind := value.GetKind().(type) {
			case *qdrant.Value_StringValue:
				chunk.Metadata[key] = kind.StringValue
			case *qdrant.Value_IntegerValue:
				chunk.Metadata[key] = kind.IntegerValue
			case *qdrant.Value_DoubleValue:
				chunk.Metadata[key] = kind.DoubleValue
			case *qdrant.Value_BoolValue:
				chunk.Metadata[key] = kind.BoolValue
			}
		}

		if !matchesFilters(chunk, rest) {
			continue
		}
		results = append(results, &types.SearchResult{Chunk: chunk, Score: float64(point.GetScore())})
	}

	return results, nil
}

// qdrantValue converts a metadata value into a payload value. Unsupported
// types return nil and are not stored.
func qdrantValue(value interface{}) *qdrant.Value {
	switch v := value.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(v)}}
	}
	return nil
}

// qdrantFilter builds a server-side must-match filter from metadata filters.
// Values without a match condition on the wire come back in rest for a
// client-side pass.
func qdrantFilter(filters map[string]interface{}) (*qdrant.Filter, map[string]interface{}) {
	if len(filters) == 0 {
		return nil, nil
	}

	must := make([]*qdrant.Condition, 0, len(filters))
	rest := make(map[string]interface{})
	for key, value := range filters {
		var match *qdrant.Match
		switch v := value.(type) {
		case string:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: v}}
		case bool:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Boolean{Boolean: v}}
		case int:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: int64(v)}}
		case int64:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: v}}
		default:
			rest[key] = value
			continue
		}
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{Field: &qdrant.FieldCondition{
				Key:   key,
				Match: match,
			}},
		})
	}

	if len(must) == 0 {
		return nil, rest
	}
	return &qdrant.Filter{Must: must}, rest
}

// Count returns the number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	resp, err := s.points.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Drop deletes the collection.
func (s *QdrantStore) Drop(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("qdrant delete collection: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}
