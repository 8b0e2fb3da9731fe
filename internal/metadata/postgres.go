// Package metadata implements the relational metadata store (IndexedDocument,
// DocumentChunk, ChatSession, ChatMessage rows) against Postgres via pgx.
package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store owns the pgxpool connection and the schema it was created with; the
// individual *Store types (IndexedDocumentStore, ChunkStore, ChatStore)
// each hold a reference to it.
type Store struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

// Connect opens a pgxpool against dsn and initializes the schema.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &Store{Pool: pool, Logger: logger}
	if err := s.initializeSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info("metadata store initialized")
	return s, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS rag_indexed_documents (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		document_kind VARCHAR(32) NOT NULL,
		chunk_count INTEGER DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		last_indexed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rag_document_chunks (
		id BIGSERIAL PRIMARY KEY,
		indexed_document_id BIGINT NOT NULL REFERENCES rag_indexed_documents(id) ON DELETE CASCADE,
		chunk_id VARCHAR(255) NOT NULL,
		ordinal INTEGER NOT NULL,
		chunk_type VARCHAR(32) NOT NULL,
		document_type VARCHAR(32) NOT NULL,
		chunk_text TEXT NOT NULL,
		metadata JSONB DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(indexed_document_id, chunk_id)
	);

	CREATE TABLE IF NOT EXISTS rag_chat_sessions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		document_id BIGINT REFERENCES rag_indexed_documents(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rag_chat_messages (
		id BIGSERIAL PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES rag_chat_sessions(id) ON DELETE CASCADE,
		role VARCHAR(16) NOT NULL,
		content TEXT NOT NULL,
		sources JSONB DEFAULT '[]',
		model_used VARCHAR(64),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rag_chunks_document ON rag_document_chunks(indexed_document_id);
	CREATE INDEX IF NOT EXISTS idx_rag_chunks_type ON rag_document_chunks(document_type);
	CREATE INDEX IF NOT EXISTS idx_rag_sessions_user ON rag_chat_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_rag_messages_session ON rag_chat_messages(session_id, created_at);
`

func (s *Store) initializeSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}
