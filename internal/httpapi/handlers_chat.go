package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qms-rag-core/internal/domain"
)

func (s *Server) askHandler(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", domain.NewValidationError(err.Error()))
		return
	}

	sessionID := req.SessionID
	if sessionID == nil {
		session, err := s.sessions.Create(c.Request.Context(), req.UserID, documentIDFromFilters(req.Filters), "")
		if err != nil {
			writeError(c, "creating session failed", err)
			return
		}
		sessionID = &session.ID
	}

	model := req.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	msg, err := s.ask.Execute(c.Request.Context(), req.UserID, *sessionID, req.Question, documentIDFromFilters(req.Filters), model)
	if err != nil {
		writeError(c, "answering question failed", err)
		return
	}
	if s.metrics != nil {
		s.metrics.QueriesHandled.Inc()
	}
	c.JSON(http.StatusOK, toChatMessageResponse(msg))
}

func documentIDFromFilters(filters map[string]any) *int64 {
	if filters == nil {
		return nil
	}
	raw, ok := filters["document_id"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		id := int64(v)
		return &id
	case int64:
		return &v
	case string:
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func (s *Server) createSessionHandler(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", domain.NewValidationError(err.Error()))
		return
	}
	session, err := s.sessions.Create(c.Request.Context(), req.UserID, nil, req.SessionName)
	if err != nil {
		writeError(c, "creating session failed", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (s *Server) renameSessionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, "invalid session id", domain.NewValidationError("id must be an integer"))
		return
	}
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", domain.NewValidationError(err.Error()))
		return
	}
	session, err := s.sessions.Rename(c.Request.Context(), id, req.SessionName)
	if err != nil {
		writeError(c, "renaming session failed", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (s *Server) listSessionsHandler(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		writeError(c, "invalid user_id", domain.NewValidationError("user_id must be an integer"))
		return
	}
	sessions, err := s.sessions.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "listing sessions failed", err)
		return
	}
	out := make([]sessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = toSessionResponse(sess)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) deleteSessionHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, "invalid session id", domain.NewValidationError("id must be an integer"))
		return
	}
	if err := s.sessions.Delete(c.Request.Context(), id); err != nil {
		writeError(c, "deleting session failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionHistoryHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, "invalid session id", domain.NewValidationError("id must be an integer"))
		return
	}
	messages, err := s.sessions.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, "loading history failed", err)
		return
	}
	out := make([]chatMessageResponse, len(messages))
	for i, m := range messages {
		out[i] = toChatMessageResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
