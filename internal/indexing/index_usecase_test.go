package indexing

import (
	"context"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

func fmtID(id int64) string { return strconv.FormatInt(id, 10) }

type fakeUploads struct {
	text       string
	visionJSON string
	title      string
	textErr    error
}

func (f fakeUploads) GetDocumentText(ctx context.Context, uploadID int64) (string, error) {
	return f.text, f.textErr
}
func (f fakeUploads) GetDocumentVisionJSON(ctx context.Context, uploadID int64) (string, error) {
	return f.visionJSON, nil
}
func (f fakeUploads) GetDocumentTitle(ctx context.Context, uploadID int64) (string, error) {
	return f.title, nil
}

type fakePermissions struct {
	allowed bool
}

func (f fakePermissions) CanIndex(ctx context.Context, userID, uploadID int64) (bool, error) {
	return f.allowed, nil
}
func (f fakePermissions) CanAsk(ctx context.Context, userID int64, documentID *int64) (bool, error) {
	return f.allowed, nil
}

type fakeDocumentStore struct {
	saved        domain.IndexedDocument
	nextID       int64
	statusCalls  []domain.IndexStatus
	byID         map[int64]domain.IndexedDocument
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{nextID: 1, byID: make(map[int64]domain.IndexedDocument)}
}

func (f *fakeDocumentStore) Save(ctx context.Context, doc domain.IndexedDocument) (domain.IndexedDocument, error) {
	doc.ID = f.nextID
	f.nextID++
	f.byID[doc.ID] = doc
	f.saved = doc
	return doc, nil
}
func (f *fakeDocumentStore) Get(ctx context.Context, id int64) (domain.IndexedDocument, error) {
	doc, ok := f.byID[id]
	if !ok {
		return domain.IndexedDocument{}, domain.NewNotFoundError("indexed_document", fmtID(id))
	}
	return doc, nil
}
func (f *fakeDocumentStore) GetByUploadID(ctx context.Context, uploadID int64) (domain.IndexedDocument, error) {
	for _, d := range f.byID {
		if d.UploadID == uploadID {
			return d, nil
		}
	}
	return domain.IndexedDocument{}, domain.NewNotFoundError("indexed_document", fmtID(uploadID))
}
func (f *fakeDocumentStore) UpdateStatus(ctx context.Context, id int64, status domain.IndexStatus, chunkCount int) error {
	f.statusCalls = append(f.statusCalls, status)
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

type fakeChunkStore struct {
	saved   []domain.DocumentChunk
	deleted int64
}

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
	f.deleted = indexedDocumentID
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
	upserted int
	deleted  int64
}

func (f *fakeVectors) EnsureCollection(ctx context.Context, name string, dimension int) error {
	return nil
}
func (f *fakeVectors) UpsertPoint(ctx context.Context, collection, pointID string, vector domain.EmbeddingVector, payload map[string]any) error {
	return nil
}
func (f *fakeVectors) UpsertBatch(ctx context.Context, collection string, points []ports.VectorPoint) error {
	f.upserted = len(points)
	return nil
}
func (f *fakeVectors) Search(ctx context.Context, collection string, query domain.EmbeddingVector, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return nil, nil
}
func (f *fakeVectors) SearchHybrid(ctx context.Context, collection string, query domain.EmbeddingVector, queryText string, filters map[string]any, topK int, minScore float64) ([]ports.VectorSearchResult, error) {
	return nil, nil
}
func (f *fakeVectors) DeletePoint(ctx context.Context, collection, pointID string) error {
	return nil
}
func (f *fakeVectors) DeleteByDocument(ctx context.Context, collection string, documentID int64) (int, error) {
	f.deleted = documentID
	n := f.upserted
	f.upserted = 0
	return n, nil
}
func (f *fakeVectors) CollectionInfo(ctx context.Context, collection string) (ports.CollectionInfo, error) {
	return ports.CollectionInfo{}, nil
}

type fakeEvents struct {
	published []domain.Event
}

func (f *fakeEvents) Publish(ctx context.Context, e domain.Event) {
	f.published = append(f.published, e)
}

const sopVisionJSON = `{"process_steps":[{"step_number":1,"description":"Gerät ausschalten","critical_rule":"Vor Wartung immer spannungsfrei schalten"}]}`

func TestIndexUseCase_Execute_RejectsWhenNotPermitted(t *testing.T) {
	u := NewIndexUseCase(
		fakeUploads{visionJSON: sopVisionJSON, title: "SOP-1"},
		fakePermissions{allowed: false},
		newFakeDocumentStore(),
		&fakeChunkStore{},
		fakeEmbedder{},
		&fakeVectors{},
		&fakeEvents{},
		"col",
		zap.NewNop(),
	)
	_, err := u.Execute(context.Background(), 1, 42)
	if err == nil {
		t.Fatal("expected permission error")
	}
}

func TestIndexUseCase_Execute_HappyPath(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	vectors := &fakeVectors{}
	events := &fakeEvents{}

	u := NewIndexUseCase(
		fakeUploads{visionJSON: sopVisionJSON, title: "SOP-1"},
		fakePermissions{allowed: true},
		docs,
		chunks,
		fakeEmbedder{},
		vectors,
		events,
		"col",
		zap.NewNop(),
	)

	doc, err := u.Execute(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Status != domain.IndexStatusIndexed {
		t.Errorf("expected indexed status, got %s", doc.Status)
	}
	if doc.DocumentKind != domain.KindSOP {
		t.Errorf("expected sop kind, got %s", doc.DocumentKind)
	}
	if len(chunks.saved) == 0 {
		t.Fatal("expected chunks to be saved")
	}
	if vectors.upserted != len(chunks.saved) {
		t.Errorf("expected %d points upserted, got %d", len(chunks.saved), vectors.upserted)
	}
	if len(events.published) != 1 || events.published[0].Type != domain.EventDocumentIndexed {
		t.Errorf("expected one document_indexed event, got %+v", events.published)
	}
}

func TestIndexUseCase_Execute_NoContentFails(t *testing.T) {
	docs := newFakeDocumentStore()
	u := NewIndexUseCase(
		fakeUploads{title: "Empty"},
		fakePermissions{allowed: true},
		docs,
		&fakeChunkStore{},
		fakeEmbedder{},
		&fakeVectors{},
		&fakeEvents{},
		"col",
		zap.NewNop(),
	)
	_, err := u.Execute(context.Background(), 1, 7)
	if err == nil {
		t.Fatal("expected error for document with no content")
	}
}

func TestReindexUseCase_Execute_ReplacesChunksAndPublishesEvent(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	vectors := &fakeVectors{}
	events := &fakeEvents{}

	indexer := NewIndexUseCase(
		fakeUploads{visionJSON: sopVisionJSON, title: "SOP-1"},
		fakePermissions{allowed: true},
		docs,
		chunks,
		fakeEmbedder{},
		vectors,
		events,
		"col",
		zap.NewNop(),
	)
	doc, err := indexer.Execute(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("setup indexing failed: %v", err)
	}

	reindexer := NewReindexUseCase(
		fakeUploads{visionJSON: sopVisionJSON, title: "SOP-1"},
		fakePermissions{allowed: true},
		docs,
		chunks,
		fakeEmbedder{},
		vectors,
		events,
		"col",
		indexer.Locks(),
		zap.NewNop(),
	)

	updated, err := reindexer.Execute(context.Background(), 1, doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.IndexStatusIndexed {
		t.Errorf("expected indexed status, got %s", updated.Status)
	}
	if len(events.published) != 2 || events.published[1].Type != domain.EventDocumentReindexed {
		t.Fatalf("expected a second document_reindexed event, got %+v", events.published)
	}
	payload, ok := events.published[1].Payload.(domain.DocumentReindexedPayload)
	if !ok {
		t.Fatalf("unexpected payload type: %T", events.published[1].Payload)
	}
	if payload.PreviousChunkCount != 1 {
		t.Errorf("expected previous chunk count 1, got %d", payload.PreviousChunkCount)
	}
}

func TestReindexUseCase_Execute_RejectsWhenNotPermitted(t *testing.T) {
	docs := newFakeDocumentStore()
	doc, _ := docs.Save(context.Background(), domain.IndexedDocument{UploadID: 1, Title: "t", DocumentKind: domain.KindGeneric, Status: domain.IndexStatusIndexed})

	u := NewReindexUseCase(
		fakeUploads{visionJSON: sopVisionJSON, title: "t"},
		fakePermissions{allowed: false},
		docs,
		&fakeChunkStore{},
		fakeEmbedder{},
		&fakeVectors{},
		&fakeEvents{},
		"col",
		newLocks(),
		zap.NewNop(),
	)
	_, err := u.Execute(context.Background(), 1, doc.ID)
	if err == nil {
		t.Fatal("expected permission error")
	}
}
