package chatorchestrator

import (
	"context"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// SessionUseCases implements create/rename/list/delete/history for chat
// sessions, the CRUD half of §4.8 that doesn't touch the LLM or retrieval.
type SessionUseCases struct {
	chatStore ports.ChatStore
}

// NewSessionUseCases builds a SessionUseCases.
func NewSessionUseCases(chatStore ports.ChatStore) *SessionUseCases {
	return &SessionUseCases{chatStore: chatStore}
}

// Create starts a new session for userID, optionally scoped to documentID.
func (u *SessionUseCases) Create(ctx context.Context, userID int64, documentID *int64, title string) (domain.ChatSession, error) {
	session, err := domain.NewChatSession(userID, documentID, title)
	if err != nil {
		return domain.ChatSession{}, err
	}
	return u.chatStore.SaveSession(ctx, session)
}

// Rename updates a session's title.
func (u *SessionUseCases) Rename(ctx context.Context, sessionID int64, title string) (domain.ChatSession, error) {
	if title == "" {
		return domain.ChatSession{}, domain.NewValidationError("title must not be empty")
	}
	session, err := u.chatStore.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ChatSession{}, err
	}
	session.Title = title
	return u.chatStore.SaveSession(ctx, session)
}

// List returns every session owned by userID.
func (u *SessionUseCases) List(ctx context.Context, userID int64) ([]domain.ChatSession, error) {
	return u.chatStore.ListSessions(ctx, userID)
}

// Delete removes a session and (per the store's FK cascade) its messages.
func (u *SessionUseCases) Delete(ctx context.Context, sessionID int64) error {
	return u.chatStore.DeleteSession(ctx, sessionID)
}

// History returns a session's messages in chronological order, each with
// its ai_model_used preserved.
func (u *SessionUseCases) History(ctx context.Context, sessionID int64) ([]domain.ChatMessage, error) {
	return u.chatStore.ListMessages(ctx, sessionID)
}
