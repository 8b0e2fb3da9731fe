package retrieval

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	return domain.NewEmbeddingVector([]float32{0.1, 0.2, 0.3}, "fake")
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	v, _ := domain.NewEmbeddingVector([]float32{0.1, 0.2, 0.3}, "fake")
	out := make([]domain.EmbeddingVector, len(texts))
	for i := range out {
		out[i] = v
	}
	return out, nil
}
func (fakeEmbedder) Name() string   { return "fake" }
func (fakeEmbedder) Dimension() int { return 3 }

type fakeVectorStore struct {
	lastHybrid   bool
	lastTopK     int
	lastMinScore float64
	results      []ports.VectorSearchResult
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, dimension int) error {
	return nil
}
func (f *fakeVectorStore) UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error {
	return nil
}
func (f *fakeVectorStore) UpsertBatch(ctx context.Context, collection string, points []ports.VectorPoint) error {
	return nil
}
func (f *fakeVectorStore) Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	f.lastHybrid = false
	f.lastTopK, f.lastMinScore = topK, minScore
	return f.results, nil
}
func (f *fakeVectorStore) SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	f.lastHybrid = true
	return f.results, nil
}
func (f *fakeVectorStore) DeletePoint(ctx context.Context, collection, pointID string) error {
	return nil
}
func (f *fakeVectorStore) DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error) {
	return 0, nil
}
func (f *fakeVectorStore) CollectionInfo(ctx context.Context, collection string) (ports.CollectionInfo, error) {
	return ports.CollectionInfo{}, nil
}

func TestService_Retrieve_RejectsEmptyQuery(t *testing.T) {
	svc := NewService(fakeEmbedder{}, &fakeVectorStore{}, "col", zap.NewNop())
	_, err := svc.Retrieve(context.Background(), Query{Text: ""})
	if err == nil {
		t.Fatal("expected error for empty query text")
	}
}

func TestService_Retrieve_UsesHybridWhenRequested(t *testing.T) {
	store := &fakeVectorStore{results: []ports.VectorSearchResult{
		{PointID: "p1", Score: 0.8, Payload: map[string]any{"chunk_id": "c1", "chunk_text": "x"}},
	}}
	svc := NewService(fakeEmbedder{}, store, "col", zap.NewNop())

	refs, err := svc.Retrieve(context.Background(), Query{Text: "frage", Hybrid: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.lastHybrid {
		t.Error("expected SearchHybrid to be called")
	}
	if len(refs) != 1 || refs[0].ChunkID != "c1" {
		t.Errorf("unexpected refs: %+v", refs)
	}
}

func TestService_Retrieve_DefaultsTopKAndMinScore(t *testing.T) {
	store := &fakeVectorStore{}
	svc := NewService(fakeEmbedder{}, store, "col", zap.NewNop())
	_, err := svc.Retrieve(context.Background(), Query{Text: "frage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastTopK != defaultTopK || store.lastMinScore != defaultMinScore {
		t.Errorf("expected defaults topK=%d minScore=%v, got topK=%d minScore=%v",
			defaultTopK, defaultMinScore, store.lastTopK, store.lastMinScore)
	}
}
