package indexing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"qms-rag-core/internal/chunking"
	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// IndexUseCase implements the Indexing use case: chunk a newly uploaded
// document, embed and store its chunks, and record the result on the
// IndexedDocument row.
type IndexUseCase struct {
	uploads     ports.UploadSource
	permissions ports.PermissionService
	documents   ports.IndexedDocumentStore
	chunks      ports.ChunkStore
	embedder    ports.EmbeddingProvider
	vectors     ports.VectorStore
	events      ports.EventSink
	collection  string
	locks       *locks
	logger      *zap.Logger
}

// NewIndexUseCase builds an IndexUseCase.
func NewIndexUseCase(
	uploads ports.UploadSource,
	permissions ports.PermissionService,
	documents ports.IndexedDocumentStore,
	chunks ports.ChunkStore,
	embedder ports.EmbeddingProvider,
	vectors ports.VectorStore,
	events ports.EventSink,
	collection string,
	logger *zap.Logger,
) *IndexUseCase {
	return &IndexUseCase{
		uploads:     uploads,
		permissions: permissions,
		documents:   documents,
		chunks:      chunks,
		embedder:    embedder,
		vectors:     vectors,
		events:      events,
		collection:  collection,
		locks:       newLocks(),
		logger:      logger,
	}
}

// Execute runs the full indexing pipeline for uploadID on behalf of
// userID, returning the resulting IndexedDocument.
func (u *IndexUseCase) Execute(ctx context.Context, userID, uploadID int64) (domain.IndexedDocument, error) {
	allowed, err := u.permissions.CanIndex(ctx, userID, uploadID)
	if err != nil {
		return domain.IndexedDocument{}, err
	}
	if !allowed {
		return domain.IndexedDocument{}, domain.NewValidationError("user is not permitted to index this document")
	}

	release, err := u.locks.acquire(ctx, uploadID)
	if err != nil {
		return domain.IndexedDocument{}, domain.NewDeadlineExceededError("index_document", err)
	}
	defer release()

	title, err := u.uploads.GetDocumentTitle(ctx, uploadID)
	if err != nil {
		return domain.IndexedDocument{}, domain.NewProviderUnavailableError("upload_source", err)
	}

	content, err := u.resolveContent(ctx, uploadID)
	if err != nil {
		return domain.IndexedDocument{}, err
	}

	kind := chunking.DetectDocumentKind(content)

	doc, err := domain.NewIndexedDocument(uploadID, title, kind)
	if err != nil {
		return domain.IndexedDocument{}, err
	}
	doc.Status = domain.IndexStatusIndexing
	doc, err = u.documents.Save(ctx, doc)
	if err != nil {
		return domain.IndexedDocument{}, err
	}

	rawChunks, err := chunkDocument(doc.ID, kind, content, u.logger)
	if err != nil {
		_ = u.documents.UpdateStatus(ctx, doc.ID, domain.IndexStatusFailed, 0)
		return domain.IndexedDocument{}, err
	}

	savedChunks, err := u.chunks.SaveBatch(ctx, rawChunks)
	if err != nil {
		_ = u.documents.UpdateStatus(ctx, doc.ID, domain.IndexStatusFailed, 0)
		return domain.IndexedDocument{}, err
	}

	if err := embedAndUpsertChunks(ctx, u.embedder, u.vectors, u.collection, doc.ID, savedChunks); err != nil {
		_ = u.documents.UpdateStatus(ctx, doc.ID, domain.IndexStatusFailed, len(savedChunks))
		return domain.IndexedDocument{}, err
	}

	if err := u.documents.UpdateStatus(ctx, doc.ID, domain.IndexStatusIndexed, len(savedChunks)); err != nil {
		return domain.IndexedDocument{}, err
	}
	doc.Status = domain.IndexStatusIndexed
	doc.ChunkCount = len(savedChunks)

	u.events.Publish(ctx, domain.NewEvent(domain.EventDocumentIndexed, domain.DocumentIndexedPayload{
		IndexedDocumentID: doc.ID,
		ChunkCount:        len(savedChunks),
	}))

	u.logger.Info("document indexed",
		zap.Int64("indexed_document_id", doc.ID),
		zap.String("document_kind", string(kind)),
		zap.Int("chunk_count", len(savedChunks)))

	return doc, nil
}

// Locks exposes the per-document lock registry so a ReindexUseCase
// constructed alongside this IndexUseCase can share it, preventing a
// document from being indexed and reindexed concurrently.
func (u *IndexUseCase) Locks() *locks {
	return u.locks
}

// resolveContent prefers Vision AI JSON when the upload has it, falling
// back to plain text; the chunking dispatch table works the same over
// either since both are just "the content a document-type predicate scans".
func (u *IndexUseCase) resolveContent(ctx context.Context, uploadID int64) (string, error) {
	visionJSON, err := u.uploads.GetDocumentVisionJSON(ctx, uploadID)
	if err == nil && visionJSON != "" {
		return visionJSON, nil
	}

	text, err := u.uploads.GetDocumentText(ctx, uploadID)
	if err != nil {
		return "", domain.NewProviderUnavailableError("upload_source", err)
	}
	if text == "" {
		return "", domain.NewValidationError("document has no extractable content")
	}
	return text, nil
}

// chunkDocument runs the Chunking Engine once per page in page order (§4.5
// steps 3-4), concatenating the results while renumbering Ordinal globally
// across the whole document. If the document-type-specific strategy fails
// on a page, that page alone degrades to the Generic strategy and a
// structured warning is logged (§4.1 Failure semantics); the document only
// fails outright if the generic fallback also fails on that page.
func chunkDocument(indexedDocumentID int64, kind domain.DocumentKind, content string, logger *zap.Logger) ([]domain.DocumentChunk, error) {
	pages, err := chunking.SplitPages(content)
	if err != nil {
		return nil, err
	}

	strategy := chunking.ForKind(kind)
	fallback := chunking.GenericStrategy{}

	var all []domain.DocumentChunk
	ordinal := 0
	for _, page := range pages {
		pageChunks, err := strategy.Chunk(indexedDocumentID, page.Number, page.Content)
		if err != nil {
			logger.Warn("chunking strategy failed on page, degrading to generic",
				zap.Int64("indexed_document_id", indexedDocumentID),
				zap.String("document_kind", string(kind)),
				zap.Int("page_number", page.Number),
				zap.Error(err))
			pageChunks, err = fallback.Chunk(indexedDocumentID, page.Number, page.Content)
			if err != nil {
				return nil, err
			}
		}
		for _, c := range pageChunks {
			c.Ordinal = ordinal
			all = append(all, c)
			ordinal++
		}
	}

	if len(all) == 0 {
		return nil, domain.NewValidationError("document produced no chunks")
	}
	return all, nil
}

// embedAndUpsertChunks is shared by IndexUseCase and ReindexUseCase: it
// embeds every chunk's text in one batch call and upserts the resulting
// vectors into the collection, payload-tagged for retrieval filtering.
func embedAndUpsertChunks(ctx context.Context, embedder ports.EmbeddingProvider, vectors ports.VectorStore, collection string, indexedDocumentID int64, chunks []domain.DocumentChunk) error {
	if err := vectors.EnsureCollection(ctx, collection, embedder.Dimension()); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedded, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embedded) != len(chunks) {
		return domain.NewBackendInconsistencyError(fmt.Sprintf("embedded %d vectors for %d chunks", len(embedded), len(chunks)))
	}

	points := make([]ports.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = ports.VectorPoint{
			PointID: chunking.PointID(c.ChunkID),
			Vector:  embedded[i],
			Payload: map[string]any{
				"chunk_id":          c.ChunkID,
				"document_id":       indexedDocumentID,
				"document_type":     string(c.Metadata.DocumentType),
				"page_numbers":      c.Metadata.PageNumbers,
				"chunk_text":        c.Text,
				"chunk_type":        string(c.ChunkType),
				"heading_hierarchy": c.Metadata.HeadingHierarchy,
				"token_count":       c.Metadata.TokenCount,
				"ordinal":           c.Ordinal,
			},
		}
	}

	return vectors.UpsertBatch(ctx, collection, points)
}
