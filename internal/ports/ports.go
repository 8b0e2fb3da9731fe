// Package ports declares the narrow capability interfaces the use cases in
// internal/indexing, internal/retrieval and internal/chatorchestrator
// depend on. Each interface is scoped to one concern so a use case can be
// tested against a hand-written fake or a go.uber.org/mock generated mock
// without pulling in Postgres, Qdrant, Redis or an LLM client.
package ports

import (
	"context"

	"qms-rag-core/internal/domain"
)

// EmbeddingProvider turns text into vectors. Implementations: openai,
// google, local, and the redis-backed cache wrapper — all in
// internal/embedding.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingVector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error)
	Name() string
	Dimension() int
}

// VectorStore is the point-level contract against the vector database.
// Implemented by internal/vectorstore's Qdrant adapter.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string, dimension int) error
	UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error
	UpsertBatch(ctx context.Context, collection string, points []VectorPoint) error
	Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]VectorSearchResult, error)
	SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]VectorSearchResult, error)
	DeletePoint(ctx context.Context, collection, pointID string) error
	DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error)
	CollectionInfo(ctx context.Context, collection string) (CollectionInfo, error)
}

// VectorPoint is one point to upsert in a batch call.
type VectorPoint struct {
	PointID  string
	Vector   domain.EmbeddingVector
	Payload  map[string]any
}

// VectorSearchResult is one hit returned from Search or SearchHybrid.
type VectorSearchResult struct {
	PointID     string
	Score       float64
	HybridScore float64
	Payload     map[string]any
}

// CollectionInfo mirrors Qdrant's collection metadata response.
type CollectionInfo struct {
	Name           string
	VectorSize     int
	Distance       string
	PointsCount    int
}

// ChunkStore persists DocumentChunk rows in the relational metadata store.
type ChunkStore interface {
	SaveBatch(ctx context.Context, chunks []domain.DocumentChunk) ([]domain.DocumentChunk, error)
	ListByDocument(ctx context.Context, indexedDocumentID int64) ([]domain.DocumentChunk, error)
	DeleteByDocument(ctx context.Context, indexedDocumentID int64) (int, error)
}

// IndexedDocumentStore persists IndexedDocument rows.
type IndexedDocumentStore interface {
	Save(ctx context.Context, doc domain.IndexedDocument) (domain.IndexedDocument, error)
	Get(ctx context.Context, id int64) (domain.IndexedDocument, error)
	GetByUploadID(ctx context.Context, uploadID int64) (domain.IndexedDocument, error)
	UpdateStatus(ctx context.Context, id int64, status domain.IndexStatus, chunkCount int) error
	List(ctx context.Context, filter DocumentListFilter) ([]domain.IndexedDocument, error)
	CountByKind(ctx context.Context) (map[domain.DocumentKind]int, error)
}

// DocumentListFilter narrows IndexedDocumentStore.List, with pagination.
type DocumentListFilter struct {
	Status domain.IndexStatus
	Kind   domain.DocumentKind
	Offset int
	Limit  int
}

// ChatStore persists ChatSession and ChatMessage rows.
type ChatStore interface {
	SaveSession(ctx context.Context, s domain.ChatSession) (domain.ChatSession, error)
	GetSession(ctx context.Context, id int64) (domain.ChatSession, error)
	ListSessions(ctx context.Context, userID int64) ([]domain.ChatSession, error)
	DeleteSession(ctx context.Context, id int64) error
	SaveMessage(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error)
}

// EventSink publishes domain events to whatever subscribers the
// composition root wired up (metrics, audit log, websocket fan-out).
type EventSink interface {
	Publish(ctx context.Context, e domain.Event)
}

// PromptTemplateSource resolves the active prompt template body for a
// document kind, allowing operators to edit prompts without a redeploy.
type PromptTemplateSource interface {
	ActiveTemplate(ctx context.Context, kind domain.DocumentKind) (string, error)
}

// UploadSource is the external document/file storage collaborator. The RAG
// core never owns file bytes; it only reads already-uploaded document text
// and metadata through this port.
type UploadSource interface {
	GetDocumentText(ctx context.Context, uploadID int64) (string, error)
	GetDocumentVisionJSON(ctx context.Context, uploadID int64) (string, error)
	GetDocumentTitle(ctx context.Context, uploadID int64) (string, error)
}

// PermissionService is the external access-control collaborator. The core
// only ever asks two yes/no questions of it.
type PermissionService interface {
	CanIndex(ctx context.Context, userID int64, uploadID int64) (bool, error)
	CanAsk(ctx context.Context, userID int64, documentID *int64) (bool, error)
}

// LLMProvider generates a chat completion from a prompt, tracking which
// concrete model id actually served the call (after any routing
// substitution).
type LLMProvider interface {
	Complete(ctx context.Context, model string, systemPrompt, userPrompt string) (LLMResponse, error)
	Name() string
}

// LLMResponse is the result of an LLMProvider.Complete call.
type LLMResponse struct {
	Content   string
	ModelUsed string
}
