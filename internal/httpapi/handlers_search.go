package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/retrieval"
)

func (s *Server) searchHandler(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, "invalid request body", domain.NewValidationError(err.Error()))
		return
	}

	refs, err := s.retrieval.Retrieve(c.Request.Context(), retrieval.Query{
		Text:       req.Query,
		DocumentID: req.DocumentID,
		TopK:       req.TopK,
		MinScore:   req.MinScore,
		Hybrid:     req.Hybrid,
	})
	if err != nil {
		writeError(c, "search failed", err)
		return
	}
	if s.metrics != nil {
		s.metrics.QueriesHandled.Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": refs,
		"count":   len(refs),
	})
}
