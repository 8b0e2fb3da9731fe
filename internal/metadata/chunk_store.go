package metadata

import (
	"context"
	"encoding/json"

	"qms-rag-core/internal/domain"
)

// ChunkStore implements ports.ChunkStore against rag_document_chunks. Chunk
// metadata is stored as JSONB plus two denormalized columns
// (document_type, chunk_type) used for store-level filtering, mirroring
// how the teacher denormalizes legal_domain alongside its own JSON fields.
type ChunkStore struct {
	store *Store
}

// NewChunkStore builds a ChunkStore.
func NewChunkStore(store *Store) *ChunkStore {
	return &ChunkStore{store: store}
}

func (s *ChunkStore) SaveBatch(ctx context.Context, chunks []domain.DocumentChunk) ([]domain.DocumentChunk, error) {
	tx, err := s.store.Pool.Begin(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer tx.Rollback(ctx)

	saved := make([]domain.DocumentChunk, 0, len(chunks))
	for _, c := range chunks {
		metaJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO rag_document_chunks
				(indexed_document_id, chunk_id, ordinal, chunk_type, document_type, chunk_text, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (indexed_document_id, chunk_id) DO UPDATE SET
				chunk_text = EXCLUDED.chunk_text,
				metadata = EXCLUDED.metadata
			RETURNING id
		`, c.IndexedDocumentID, c.ChunkID, c.Ordinal, c.ChunkType, c.Metadata.DocumentType, c.Text, metaJSON, c.CreatedAt,
		).Scan(&c.ID)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		saved = append(saved, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return saved, nil
}

func (s *ChunkStore) ListByDocument(ctx context.Context, indexedDocumentID int64) ([]domain.DocumentChunk, error) {
	rows, err := s.store.Pool.Query(ctx, `
		SELECT id, indexed_document_id, chunk_id, ordinal, chunk_type, chunk_text, metadata, created_at
		FROM rag_document_chunks
		WHERE indexed_document_id = $1
		ORDER BY ordinal ASC
	`, indexedDocumentID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var metaJSON []byte
		if err := rows.Scan(&c.ID, &c.IndexedDocumentID, &c.ChunkID, &c.Ordinal, &c.ChunkType, &c.Text, &metaJSON, &c.CreatedAt); err != nil {
			return nil, domain.NewInternalError(err)
		}
		if err := json.Unmarshal(metaJSON, &c.Metadata); err != nil {
			return nil, domain.NewInternalError(err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return chunks, nil
}

func (s *ChunkStore) DeleteByDocument(ctx context.Context, indexedDocumentID int64) (int, error) {
	tag, err := s.store.Pool.Exec(ctx, `DELETE FROM rag_document_chunks WHERE indexed_document_id = $1`, indexedDocumentID)
	if err != nil {
		return 0, domain.NewInternalError(err)
	}
	return int(tag.RowsAffected()), nil
}
