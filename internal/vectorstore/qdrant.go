// Package vectorstore implements the Vector Store Adapter against Qdrant,
// the ports.VectorStore contract, and the hybrid vector+text scoring blend.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// QdrantStore implements ports.VectorStore against a Qdrant instance. One
// collection per deployment, dimension fixed at EnsureCollection time.
type QdrantStore struct {
	client *qdrant.Client
	logger *zap.Logger
}

// NewQdrantStore builds a QdrantStore connected to host:port.
func NewQdrantStore(host string, port int, apiKey string, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return &QdrantStore{client: client, logger: logger}, nil
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return domain.NewProviderUnavailableError("qdrant", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create qdrant collection %s: %w", name, err)
	}

	s.logger.Info("qdrant collection created", zap.String("collection", name), zap.Int("dimension", dimension))
	return nil
}

func (s *QdrantStore) UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error {
	return s.UpsertBatch(ctx, collection, []ports.VectorPoint{{PointID: pointID, Vector: vector, Payload: payload}})
}

func (s *QdrantStore) UpsertBatch(ctx context.Context, collection string, points []ports.VectorPoint) error {
	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.PointID),
			Vectors: qdrant.NewVectors(p.Vector.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	limit := uint64(topK)
	threshold := float32(minScore)

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query.Vector...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		Filter:         buildFilter(filters),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, domain.NewProviderUnavailableError("qdrant", err)
	}

	results := make([]ports.VectorSearchResult, 0, len(resp))
	for _, p := range resp {
		results = append(results, ports.VectorSearchResult{
			PointID: pointIDString(p.Id),
			Score:   float64(p.Score),
			Payload: payloadToMap(p.Payload),
		})
	}
	return results, nil
}

func (s *QdrantStore) SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return searchHybrid(ctx, s, collection, query, queryText, filters, topK, minScore)
}

func (s *QdrantStore) DeletePoint(ctx context.Context, collection, pointID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorIDs([]*qdrant.PointId{qdrant.NewIDUUID(pointID)}),
	})
	if err != nil {
		return fmt.Errorf("failed to delete point %s from %s: %w", pointID, collection, err)
	}
	return nil
}

func (s *QdrantStore) DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("document_id", documentID),
		},
	}

	var allIDs []*qdrant.PointId
	var offset *qdrant.PointId
	for {
		resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint32(1000)),
			Offset:         offset,
		})
		if err != nil {
			return 0, domain.NewProviderUnavailableError("qdrant", err)
		}
		if len(resp) == 0 {
			break
		}
		for _, p := range resp {
			allIDs = append(allIDs, p.Id)
		}
		if len(resp) < 1000 {
			break
		}
		offset = resp[len(resp)-1].Id
	}

	if len(allIDs) == 0 {
		return 0, nil
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorIDs(allIDs),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %d points for document %d: %w", len(allIDs), documentID, err)
	}
	return len(allIDs), nil
}

func (s *QdrantStore) CollectionInfo(ctx context.Context, collection string) (ports.CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return ports.CollectionInfo{Name: collection}, domain.NewProviderUnavailableError("qdrant", err)
	}
	return ports.CollectionInfo{
		Name:        collection,
		VectorSize:  int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
		Distance:    info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetDistance().String(),
		PointsCount: int(info.GetPointsCount()),
	}, nil
}

func buildFilter(filters map[string]any) *qdrant.Filter {
	if len(filters) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filters))
	for key, value := range filters {
		switch v := value.(type) {
		case string:
			conditions = append(conditions, qdrant.NewMatch(key, v))
		case int:
			conditions = append(conditions, qdrant.NewMatchInt(key, int64(v)))
		case int64:
			conditions = append(conditions, qdrant.NewMatchInt(key, v))
		}
	}
	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = valueToAny(v)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
