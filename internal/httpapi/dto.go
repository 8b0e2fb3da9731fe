package httpapi

import (
	"time"

	"qms-rag-core/internal/domain"
)

// errorResponse is the shape every non-2xx response carries, per
// spec.md §6: {error, detail, timestamp}.
type errorResponse struct {
	Error     string    `json:"error"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

func newErrorResponse(summary string, err error) errorResponse {
	return errorResponse{Error: summary, Detail: err.Error(), Timestamp: time.Now()}
}

type indexDocumentRequest struct {
	UploadDocumentID int64 `json:"upload_document_id" binding:"required"`
	ForceReindex     bool  `json:"force_reindex"`
	UserID           int64 `json:"user_id" binding:"required"`
}

type documentResponse struct {
	ID            int64      `json:"id"`
	UploadID      int64      `json:"upload_id"`
	Title         string     `json:"title"`
	DocumentKind  string     `json:"document_kind"`
	ChunkCount    int        `json:"chunk_count"`
	Status        string     `json:"status"`
	LastIndexedAt *time.Time `json:"last_indexed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toDocumentResponse(d domain.IndexedDocument) documentResponse {
	return documentResponse{
		ID:            d.ID,
		UploadID:      d.UploadID,
		Title:         d.Title,
		DocumentKind:  string(d.DocumentKind),
		ChunkCount:    d.ChunkCount,
		Status:        string(d.Status),
		LastIndexedAt: d.LastIndexedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type createSessionRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	SessionName string `json:"session_name"`
}

type renameSessionRequest struct {
	SessionName string `json:"session_name" binding:"required"`
}

type sessionResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	DocumentID *int64     `json:"document_id,omitempty"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toSessionResponse(s domain.ChatSession) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		DocumentID: s.DocumentID,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type askRequest struct {
	Question        string         `json:"question" binding:"required"`
	SessionID       *int64         `json:"session_id"`
	UserID          int64          `json:"user_id" binding:"required"`
	Model           string         `json:"model"`
	TopK            int            `json:"top_k"`
	ScoreThreshold  float64        `json:"score_threshold"`
	Filters         map[string]any `json:"filters"`
	UseHybridSearch bool           `json:"use_hybrid_search"`
}

type chatMessageResponse struct {
	ID        int64                     `json:"id"`
	SessionID int64                     `json:"session_id"`
	Role      string                    `json:"role"`
	Content   string                    `json:"content"`
	Sources   []domain.SourceReference  `json:"sources"`
	ModelUsed string                    `json:"ai_model_used"`
	CreatedAt time.Time                 `json:"created_at"`
}

func toChatMessageResponse(m domain.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		Sources:   m.Sources,
		ModelUsed: m.ModelUsed,
		CreatedAt: m.CreatedAt,
	}
}

type searchRequest struct {
	Query      string `json:"query" binding:"required"`
	DocumentID *int64 `json:"document_id"`
	TopK       int    `json:"top_k"`
	MinScore   float64 `json:"min_score"`
	Hybrid     bool   `json:"hybrid"`
}
