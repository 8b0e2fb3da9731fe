package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

func (s *Server) indexDocumentHandler(c *gin.Context) {
	var req indexDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", domain.NewValidationError(err.Error()))
		return
	}

	doc, err := s.index.Execute(c.Request.Context(), req.UserID, req.UploadDocumentID)
	if err != nil {
		writeError(c, "indexing failed", err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) reindexDocumentHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, "invalid document id", domain.NewValidationError("id must be an integer"))
		return
	}

	var req indexDocumentRequest
	_ = c.ShouldBindJSON(&req)

	doc, err := s.reindex.Execute(c.Request.Context(), req.UserID, id)
	if err != nil {
		writeError(c, "reindexing failed", err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) listDocumentsHandler(c *gin.Context) {
	filter := ports.DocumentListFilter{
		Status: domain.IndexStatus(c.Query("status")),
		Kind:   domain.DocumentKind(c.Query("type")),
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	docs, err := s.documents.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "listing documents failed", err)
		return
	}

	out := make([]documentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (s *Server) documentTypeCountsHandler(c *gin.Context) {
	counts, err := s.documents.CountByKind(c.Request.Context())
	if err != nil {
		writeError(c, "counting documents failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
