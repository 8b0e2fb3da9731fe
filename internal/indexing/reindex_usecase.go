package indexing

import (
	"context"

	"go.uber.org/zap"

	"qms-rag-core/internal/chunking"
	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// ReindexUseCase rebuilds an already-indexed document's chunks from
// scratch: deletes its existing chunk rows and vector points, then runs
// the same chunk/embed/upsert pipeline as IndexUseCase.
type ReindexUseCase struct {
	uploads     ports.UploadSource
	permissions ports.PermissionService
	documents   ports.IndexedDocumentStore
	chunkStore  ports.ChunkStore
	embedder    ports.EmbeddingProvider
	vectors     ports.VectorStore
	events      ports.EventSink
	collection  string
	locks       *locks
	logger      *zap.Logger
}

// NewReindexUseCase builds a ReindexUseCase. The locks registry is shared
// with IndexUseCase's so a document being re-indexed can't also be
// concurrently indexed for the first time.
func NewReindexUseCase(
	uploads ports.UploadSource,
	permissions ports.PermissionService,
	documents ports.IndexedDocumentStore,
	chunkStore ports.ChunkStore,
	embedder ports.EmbeddingProvider,
	vectors ports.VectorStore,
	events ports.EventSink,
	collection string,
	sharedLocks *locks,
	logger *zap.Logger,
) *ReindexUseCase {
	return &ReindexUseCase{
		uploads:     uploads,
		permissions: permissions,
		documents:   documents,
		chunkStore:  chunkStore,
		embedder:    embedder,
		vectors:     vectors,
		events:      events,
		collection:  collection,
		locks:       sharedLocks,
		logger:      logger,
	}
}

// Execute re-chunks, re-embeds and re-upserts indexedDocumentID, replacing
// its prior chunks entirely.
func (u *ReindexUseCase) Execute(ctx context.Context, userID, indexedDocumentID int64) (domain.IndexedDocument, error) {
	doc, err := u.documents.Get(ctx, indexedDocumentID)
	if err != nil {
		return domain.IndexedDocument{}, err
	}

	allowed, err := u.permissions.CanIndex(ctx, userID, doc.UploadID)
	if err != nil {
		return domain.IndexedDocument{}, err
	}
	if !allowed {
		return domain.IndexedDocument{}, domain.NewValidationError("user is not permitted to reindex this document")
	}

	release, err := u.locks.acquire(ctx, doc.UploadID)
	if err != nil {
		return domain.IndexedDocument{}, domain.NewDeadlineExceededError("reindex_document", err)
	}
	defer release()

	previousChunkCount := doc.ChunkCount

	if _, err := u.vectors.DeleteByDocument(ctx, u.collection, doc.ID); err != nil {
		return domain.IndexedDocument{}, err
	}
	if _, err := u.chunkStore.DeleteByDocument(ctx, doc.ID); err != nil {
		return domain.IndexedDocument{}, err
	}

	content, err := u.resolveContent(ctx, doc.UploadID)
	if err != nil {
		return domain.IndexedDocument{}, err
	}

	kind := chunking.DetectDocumentKind(content)

	doc.Status = domain.IndexStatusIndexing
	if err := u.documents.UpdateStatus(ctx, doc.ID, doc.Status, 0); err != nil {
		return domain.IndexedDocument{}, err
	}

	rawChunks, err := chunkDocument(doc.ID, kind, content, u.logger)
	if err != nil {
		_ = u.documents.UpdateStatus(ctx, doc.ID, domain.IndexStatusFailed, 0)
		return domain.IndexedDocument{}, err
	}

	savedChunks, err := u.chunkStore.SaveBatch(ctx, rawChunks)
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
	doc.DocumentKind = kind

	u.events.Publish(ctx, domain.NewEvent(domain.EventDocumentReindexed, domain.DocumentReindexedPayload{
		IndexedDocumentID:  doc.ID,
		PreviousChunkCount: previousChunkCount,
		NewChunkCount:      len(savedChunks),
	}))

	u.logger.Info("document reindexed",
		zap.Int64("indexed_document_id", doc.ID),
		zap.Int("previous_chunk_count", previousChunkCount),
		zap.Int("new_chunk_count", len(savedChunks)))

	return doc, nil
}

func (u *ReindexUseCase) resolveContent(ctx context.Context, uploadID int64) (string, error) {
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
