package metadata

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"qms-rag-core/internal/domain"
)

// ChatStore implements ports.ChatStore against rag_chat_sessions and
// rag_chat_messages.
type ChatStore struct {
	store *Store
}

// NewChatStore builds a ChatStore.
func NewChatStore(store *Store) *ChatStore {
	return &ChatStore{store: store}
}

func (s *ChatStore) SaveSession(ctx context.Context, sess domain.ChatSession) (domain.ChatSession, error) {
	err := s.store.Pool.QueryRow(ctx, `
		INSERT INTO rag_chat_sessions (user_id, document_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sess.UserID, sess.DocumentID, sess.Title, sess.CreatedAt, sess.UpdatedAt).Scan(&sess.ID)
	if err != nil {
		return domain.ChatSession{}, domain.NewInternalError(err)
	}
	return sess, nil
}

func (s *ChatStore) GetSession(ctx context.Context, id int64) (domain.ChatSession, error) {
	var sess domain.ChatSession
	err := s.store.Pool.QueryRow(ctx, `
		SELECT id, user_id, document_id, title, created_at, updated_at
		FROM rag_chat_sessions WHERE id = $1
	`, id).Scan(&sess.ID, &sess.UserID, &sess.DocumentID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChatSession{}, domain.NewNotFoundError("chat_session", fmtInt(id))
	}
	if err != nil {
		return domain.ChatSession{}, domain.NewInternalError(err)
	}
	return sess, nil
}

func (s *ChatStore) ListSessions(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	rows, err := s.store.Pool.Query(ctx, `
		SELECT id, user_id, document_id, title, created_at, updated_at
		FROM rag_chat_sessions WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		var sess domain.ChatSession
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.DocumentID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, domain.NewInternalError(err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *ChatStore) DeleteSession(ctx context.Context, id int64) error {
	tag, err := s.store.Pool.Exec(ctx, `DELETE FROM rag_chat_sessions WHERE id = $1`, id)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("chat_session", fmtInt(id))
	}
	return nil
}

func (s *ChatStore) SaveMessage(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	sourcesJSON, err := json.Marshal(msg.Sources)
	if err != nil {
		return domain.ChatMessage{}, domain.NewInternalError(err)
	}

	err = s.store.Pool.QueryRow(ctx, `
		INSERT INTO rag_chat_messages (session_id, role, content, sources, model_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, msg.SessionID, msg.Role, msg.Content, sourcesJSON, msg.ModelUsed, msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		return domain.ChatMessage{}, domain.NewInternalError(err)
	}

	_, err = s.store.Pool.Exec(ctx, `UPDATE rag_chat_sessions SET updated_at = $2 WHERE id = $1`, msg.SessionID, msg.CreatedAt)
	if err != nil {
		return domain.ChatMessage{}, domain.NewInternalError(err)
	}
	return msg, nil
}

func (s *ChatStore) ListMessages(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	rows, err := s.store.Pool.Query(ctx, `
		SELECT id, session_id, role, content, sources, model_used, created_at
		FROM rag_chat_messages WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var sourcesJSON []byte
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &sourcesJSON, &msg.ModelUsed, &msg.CreatedAt); err != nil {
			return nil, domain.NewInternalError(err)
		}
		if err := json.Unmarshal(sourcesJSON, &msg.Sources); err != nil {
			return nil, domain.NewInternalError(err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
