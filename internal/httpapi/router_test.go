package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"qms-rag-core/internal/chatorchestrator"
	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/events"
	"qms-rag-core/internal/indexing"
	"qms-rag-core/internal/ports"
	"qms-rag-core/internal/retrieval"
)

type fakeUploads struct{ visionJSON, title string }

func (f fakeUploads) GetDocumentText(ctx context.Context, uploadID int64) (string, error) {
	return "", nil
}
func (f fakeUploads) GetDocumentVisionJSON(ctx context.Context, uploadID int64) (string, error) {
	return f.visionJSON, nil
}
func (f fakeUploads) GetDocumentTitle(ctx context.Context, uploadID int64) (string, error) {
	return f.title, nil
}

type fakePermissions struct{ allowed bool }

func (f fakePermissions) CanIndex(ctx context.Context, userID, uploadID int64) (bool, error) {
	return f.allowed, nil
}
func (f fakePermissions) CanAsk(ctx context.Context, userID int64, documentID *int64) (bool, error) {
	return f.allowed, nil
}

type fakeDocumentStore struct {
	nextID int64
	byID   map[int64]domain.IndexedDocument
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{nextID: 1, byID: make(map[int64]domain.IndexedDocument)}
}
func (f *fakeDocumentStore) Save(ctx context.Context, doc domain.IndexedDocument) (domain.IndexedDocument, error) {
	doc.ID = f.nextID
	f.nextID++
	f.byID[doc.ID] = doc
	return doc, nil
}
func (f *fakeDocumentStore) Get(ctx context.Context, id int64) (domain.IndexedDocument, error) {
	doc, ok := f.byID[id]
	if !ok {
		return domain.IndexedDocument{}, domain.NewNotFoundError("indexed_document", "missing")
	}
	return doc, nil
}
func (f *fakeDocumentStore) GetByUploadID(ctx context.Context, uploadID int64) (domain.IndexedDocument, error) {
	for _, d := range f.byID {
		if d.UploadID == uploadID {
			return d, nil
		}
	}
	return domain.IndexedDocument{}, domain.NewNotFoundError("indexed_document", "missing")
}
func (f *fakeDocumentStore) UpdateStatus(ctx context.Context, id int64, status domain.IndexStatus, chunkCount int) error {
	doc := f.byID[id]
	doc.Status = status
	doc.ChunkCount = chunkCount
	f.byID[id] = doc
	return nil
}
func (f *fakeDocumentStore) List(ctx context.Context, filter ports.DocumentListFilter) ([]domain.IndexedDocument, error) {
	var out []domain.IndexedDocument
	for _, d := range f.byID {
		out = append(out, d)
	}
	return out, nil
}
func (f *fakeDocumentStore) CountByKind(ctx context.Context) (map[domain.DocumentKind]int, error) {
	counts := make(map[domain.DocumentKind]int)
	for _, d := range f.byID {
		counts[d.DocumentKind]++
	}
	return counts, nil
}

type fakeChunkStore struct{ saved []domain.DocumentChunk }

func (f *fakeChunkStore) SaveBatch(ctx context.Context, chunks []domain.DocumentChunk) ([]domain.DocumentChunk, error) {
	out := make([]domain.DocumentChunk, len(chunks))
	for i, c := range chunks {
		c.ID = int64(i + 1)
		out[i] = c
	}
	f.saved = out
	return out, nil
}
func (f *fakeChunkStore) ListByDocument(ctx context.Context, indexedDocumentID int64) ([]domain.DocumentChunk, error) {
	return f.saved, nil
}
func (f *fakeChunkStore) DeleteByDocument(ctx context.Context, indexedDocumentID int64) (int, error) {
	n := len(f.saved)
	f.saved = nil
	return n, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	return domain.NewEmbeddingVector([]float32{0.1, 0.2}, "fake")
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	v, _ := domain.NewEmbeddingVector([]float32{0.1, 0.2}, "fake")
	out := make([]domain.EmbeddingVector, len(texts))
	for i := range out {
		out[i] = v
	}
	return out, nil
}
func (fakeEmbedder) Name() string   { return "fake" }
func (fakeEmbedder) Dimension() int { return 2 }

type fakeVectors struct {
	upserted []ports.VectorPoint
	healthy  bool
}

func (f *fakeVectors) EnsureCollection(ctx context.Context, name string, dimension int) error {
	return nil
}
func (f *fakeVectors) UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error {
	return nil
}
func (f *fakeVectors) UpsertBatch(ctx context.Context, collection string, points []ports.VectorPoint) error {
	f.upserted = points
	return nil
}
func (f *fakeVectors) Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return f.asResults(), nil
}
func (f *fakeVectors) SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return f.asResults(), nil
}
func (f *fakeVectors) asResults() []ports.VectorSearchResult {
	var out []ports.VectorSearchResult
	for _, p := range f.upserted {
		out = append(out, ports.VectorSearchResult{PointID: p.PointID, Score: 0.9, Payload: p.Payload})
	}
	return out
}
func (f *fakeVectors) DeletePoint(ctx context.Context, collection, pointID string) error { return nil }
func (f *fakeVectors) DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error) {
	n := len(f.upserted)
	f.upserted = nil
	return n, nil
}
func (f *fakeVectors) CollectionInfo(ctx context.Context, collection string) (ports.CollectionInfo, error) {
	if !f.healthy {
		return ports.CollectionInfo{}, domain.NewProviderUnavailableError("qdrant", nil)
	}
	return ports.CollectionInfo{Name: collection}, nil
}

type fakeEvents struct{ published []domain.Event }

func (f *fakeEvents) Publish(ctx context.Context, e domain.Event) { f.published = append(f.published, e) }

type fakeLLM struct{ content string }

func (f fakeLLM) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (ports.LLMResponse, error) {
	return ports.LLMResponse{Content: f.content, ModelUsed: model}, nil
}
func (f fakeLLM) Name() string { return "fake" }

type fakeChatStore struct {
	nextSessionID int64
	nextMessageID int64
	sessions      map[int64]domain.ChatSession
	messages      map[int64][]domain.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{nextSessionID: 1, nextMessageID: 1, sessions: make(map[int64]domain.ChatSession), messages: make(map[int64][]domain.ChatMessage)}
}
func (f *fakeChatStore) SaveSession(ctx context.Context, s domain.ChatSession) (domain.ChatSession, error) {
	if s.ID == 0 {
		s.ID = f.nextSessionID
		f.nextSessionID++
	}
	f.sessions[s.ID] = s
	return s, nil
}
func (f *fakeChatStore) GetSession(ctx context.Context, id int64) (domain.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return domain.ChatSession{}, domain.NewNotFoundError("chat_session", "missing")
	}
	return s, nil
}
func (f *fakeChatStore) ListSessions(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (f *fakeChatStore) DeleteSession(ctx context.Context, id int64) error {
	delete(f.sessions, id)
	delete(f.messages, id)
	return nil
}
func (f *fakeChatStore) SaveMessage(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error) {
	m.ID = f.nextMessageID
	f.nextMessageID++
	f.messages[m.SessionID] = append(f.messages[m.SessionID], m)
	return m, nil
}
func (f *fakeChatStore) ListMessages(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	return f.messages[sessionID], nil
}

func newTestServer(t *testing.T) (*Server, *fakeDocumentStore, *fakeVectors, *fakeChatStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	documents := newFakeDocumentStore()
	chunkStore := &fakeChunkStore{}
	vectors := &fakeVectors{healthy: true}
	evts := &fakeEvents{}
	chatStore := newFakeChatStore()

	indexUseCase := indexing.NewIndexUseCase(
		fakeUploads{visionJSON: `{"process_steps":[{"step_number":1,"description":"step one"}]}`, title: "doc"},
		fakePermissions{allowed: true},
		documents, chunkStore, fakeEmbedder{}, vectors, evts, "col", logger,
	)
	reindexUseCase := indexing.NewReindexUseCase(
		fakeUploads{visionJSON: `{"process_steps":[{"step_number":1,"description":"step one"}]}`, title: "doc"},
		fakePermissions{allowed: true},
		documents, chunkStore, fakeEmbedder{}, vectors, evts, "col", indexUseCase.Locks(), logger,
	)

	retrievalService := retrieval.NewService(fakeEmbedder{}, vectors, "col", logger)
	askUseCase := chatorchestrator.NewAskQuestionUseCase(retrievalService, chatStore, fakePermissions{allowed: true}, fakeLLM{content: "eine Antwort"}, nil, evts, logger)
	sessionUseCases := chatorchestrator.NewSessionUseCases(chatStore)

	registry := prometheus.NewRegistry()
	metrics := events.NewMetrics(registry)

	server := NewServer(indexUseCase, reindexUseCase, retrievalService, askUseCase, sessionUseCases, documents, metrics, logger)
	return server, documents, vectors, chatStore
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIndexDocumentHandler_HappyPath(t *testing.T) {
	server, _, _, _ := newTestServer(t)
	r := gin.New()
	server.RegisterRoutes(r)

	rec := doRequest(r, http.MethodPost, "/api/rag/documents/index", indexDocumentRequest{UploadDocumentID: 1, UserID: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp documentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != string(domain.IndexStatusIndexed) {
		t.Errorf("expected indexed status, got %s", resp.Status)
	}
}

func TestIndexDocumentHandler_RejectsMissingBody(t *testing.T) {
	server, _, _, _ := newTestServer(t)
	r := gin.New()
	server.RegisterRoutes(r)

	rec := doRequest(r, http.MethodPost, "/api/rag/documents/index", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskHandler_CreatesSessionWhenNoneProvided(t *testing.T) {
	server, _, vectors, chatStore := newTestServer(t)
	r := gin.New()
	server.RegisterRoutes(r)

	vectors.upserted = []ports.VectorPoint{{PointID: "p1", Payload: map[string]any{
		"chunk_id": "c1", "document_id": int64(1), "chunk_text": "some text", "document_type": "sop", "ordinal": 0,
	}}}

	rec := doRequest(r, http.MethodPost, "/api/rag/chat/ask", askRequest{Question: "Wie geht das?", UserID: 7})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Content != "eine Antwort" {
		t.Errorf("expected llm content, got %q", resp.Content)
	}
	if len(chatStore.sessions) != 1 {
		t.Errorf("expected one session to be auto-created, got %d", len(chatStore.sessions))
	}
}

func TestHealthHandler_ReportsDegradedOnVectorStoreFailure(t *testing.T) {
	server, _, vectors, _ := newTestServer(t)
	vectors.healthy = false
	r := gin.New()
	server.RegisterRoutes(r)

	rec := doRequest(r, http.MethodGet, "/api/rag/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestListDocumentsHandler_ReturnsIndexedDocuments(t *testing.T) {
	server, documents, _, _ := newTestServer(t)
	documents.Save(context.Background(), domain.IndexedDocument{UploadID: 1, Title: "a", DocumentKind: domain.KindGeneric, Status: domain.IndexStatusIndexed})
	r := gin.New()
	server.RegisterRoutes(r)

	rec := doRequest(r, http.MethodGet, "/api/rag/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
