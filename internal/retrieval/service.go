// Package retrieval implements the Retrieval Service: turning a natural
// language query into a ranked list of SourceReference hits against the
// vector store, optionally scoped to one document and optionally reranked
// with the hybrid vector+text blend.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// Query describes one retrieval request.
type Query struct {
	Text       string
	DocumentID *int64
	TopK       int
	MinScore   float64
	Hybrid     bool
}

const (
	defaultTopK     = 5
	defaultMinScore = 0.5
)

// Service is the Retrieval Service use case.
type Service struct {
	embedder   ports.EmbeddingProvider
	store      ports.VectorStore
	collection string
	logger     *zap.Logger
}

// NewService builds a Service.
func NewService(embedder ports.EmbeddingProvider, store ports.VectorStore, collection string, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, store: store, collection: collection, logger: logger}
}

// Retrieve embeds q.Text and searches the vector store, returning ranked
// SourceReferences. An empty query is rejected; missing TopK/MinScore fall
// back to defaults.
func (s *Service) Retrieve(ctx context.Context, q Query) ([]domain.SourceReference, error) {
	if q.Text == "" {
		return nil, domain.NewValidationError("query text must not be empty")
	}

	topK := q.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	minScore := q.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	queryVector, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{}
	if q.DocumentID != nil {
		filters["document_id"] = *q.DocumentID
	}

	var results []ports.VectorSearchResult
	if q.Hybrid {
		results, err = s.store.SearchHybrid(ctx, s.collection, queryVector, q.Text, filters, topK, minScore)
	} else {
		results, err = s.store.Search(ctx, s.collection, queryVector, filters, topK, minScore)
	}
	if err != nil {
		return nil, err
	}

	refs := make([]domain.SourceReference, 0, len(results))
	for _, r := range results {
		refs = append(refs, toSourceReference(r))
	}

	s.logger.Debug("retrieval completed",
		zap.String("query", q.Text),
		zap.Int("hits", len(refs)),
		zap.Bool("hybrid", q.Hybrid))

	return refs, nil
}

// CollectionInfo exposes the vector store's collection metadata, used by
// the health check endpoint to confirm the backend is reachable.
func (s *Service) CollectionInfo(ctx context.Context) (ports.CollectionInfo, error) {
	return s.store.CollectionInfo(ctx, s.collection)
}

func toSourceReference(r ports.VectorSearchResult) domain.SourceReference {
	score := r.Score
	if r.HybridScore != 0 {
		score = r.HybridScore
	}

	chunkID, _ := r.Payload["chunk_id"].(string)
	documentName, _ := r.Payload["document_name"].(string)
	excerpt, _ := r.Payload["chunk_text"].(string)
	documentType, _ := r.Payload["document_type"].(string)

	var documentID int64
	switch v := r.Payload["document_id"].(type) {
	case int64:
		documentID = v
	case float64:
		documentID = int64(v)
	}

	var ordinal int
	switch v := r.Payload["ordinal"].(type) {
	case int64:
		ordinal = int(v)
	case float64:
		ordinal = int(v)
	}

	return domain.SourceReference{
		ChunkID:      chunkID,
		DocumentID:   documentID,
		DocumentName: documentName,
		DocumentType: domain.DocumentKind(documentType),
		Ordinal:      ordinal,
		Score:        score,
		Excerpt:      excerpt,
	}
}
