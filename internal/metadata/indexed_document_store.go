package metadata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// IndexedDocumentStore implements ports.IndexedDocumentStore against
// rag_indexed_documents.
type IndexedDocumentStore struct {
	store *Store
}

// NewIndexedDocumentStore builds an IndexedDocumentStore.
func NewIndexedDocumentStore(store *Store) *IndexedDocumentStore {
	return &IndexedDocumentStore{store: store}
}

func (s *IndexedDocumentStore) Save(ctx context.Context, doc domain.IndexedDocument) (domain.IndexedDocument, error) {
	query := `
		INSERT INTO rag_indexed_documents
			(upload_id, title, document_kind, chunk_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (upload_id) DO UPDATE SET
			title = EXCLUDED.title,
			document_kind = EXCLUDED.document_kind,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	err := s.store.Pool.QueryRow(ctx, query,
		doc.UploadID, doc.Title, doc.DocumentKind, doc.ChunkCount, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return domain.IndexedDocument{}, domain.NewInternalError(err)
	}
	return doc, nil
}

func (s *IndexedDocumentStore) Get(ctx context.Context, id int64) (domain.IndexedDocument, error) {
	return s.scanOne(ctx, `
		SELECT id, upload_id, title, document_kind, chunk_count, status, last_indexed_at, created_at, updated_at
		FROM rag_indexed_documents WHERE id = $1
	`, id)
}

func (s *IndexedDocumentStore) GetByUploadID(ctx context.Context, uploadID int64) (domain.IndexedDocument, error) {
	return s.scanOne(ctx, `
		SELECT id, upload_id, title, document_kind, chunk_count, status, last_indexed_at, created_at, updated_at
		FROM rag_indexed_documents WHERE upload_id = $1
	`, uploadID)
}

func (s *IndexedDocumentStore) scanOne(ctx context.Context, query string, arg int64) (domain.IndexedDocument, error) {
	var doc domain.IndexedDocument
	err := s.store.Pool.QueryRow(ctx, query, arg).Scan(
		&doc.ID, &doc.UploadID, &doc.Title, &doc.DocumentKind, &doc.ChunkCount,
		&doc.Status, &doc.LastIndexedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IndexedDocument{}, domain.NewNotFoundError("indexed_document", fmtInt(arg))
	}
	if err != nil {
		return domain.IndexedDocument{}, domain.NewInternalError(err)
	}
	return doc, nil
}

func (s *IndexedDocumentStore) UpdateStatus(ctx context.Context, id int64, status domain.IndexStatus, chunkCount int) error {
	_, err := s.store.Pool.Exec(ctx, `
		UPDATE rag_indexed_documents
		SET status = $2, chunk_count = $3, last_indexed_at = CASE WHEN $2 = 'indexed' THEN CURRENT_TIMESTAMP ELSE last_indexed_at END, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, id, status, chunkCount)
	if err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

func (s *IndexedDocumentStore) List(ctx context.Context, filter ports.DocumentListFilter) ([]domain.IndexedDocument, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.store.Pool.Query(ctx, `
		SELECT id, upload_id, title, document_kind, chunk_count, status, last_indexed_at, created_at, updated_at
		FROM rag_indexed_documents
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR document_kind = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, filter.Status, filter.Kind, limit, filter.Offset)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer rows.Close()

	var docs []domain.IndexedDocument
	for rows.Next() {
		var doc domain.IndexedDocument
		if err := rows.Scan(&doc.ID, &doc.UploadID, &doc.Title, &doc.DocumentKind, &doc.ChunkCount,
			&doc.Status, &doc.LastIndexedAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, domain.NewInternalError(err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *IndexedDocumentStore) CountByKind(ctx context.Context) (map[domain.DocumentKind]int, error) {
	rows, err := s.store.Pool.Query(ctx, `
		SELECT document_kind, COUNT(*) FROM rag_indexed_documents GROUP BY document_kind
	`)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer rows.Close()

	counts := make(map[domain.DocumentKind]int)
	for rows.Next() {
		var kind domain.DocumentKind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, domain.NewInternalError(err)
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}
