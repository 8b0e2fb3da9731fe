// Package httpapi exposes the RAG core's use cases over HTTP, grounded on
// the teacher's gin.Engine + route group wiring (one API group, one CORS
// middleware, handlers delegating straight to use cases).
package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qms-rag-core/internal/chatorchestrator"
	"qms-rag-core/internal/events"
	"qms-rag-core/internal/indexing"
	"qms-rag-core/internal/ports"
	"qms-rag-core/internal/retrieval"
)

// Server composes every use case the HTTP surface calls into. It owns no
// infrastructure itself; cmd/ragserver builds the collaborators and hands
// them in.
type Server struct {
	index     *indexing.IndexUseCase
	reindex   *indexing.ReindexUseCase
	retrieval *retrieval.Service
	ask       *chatorchestrator.AskQuestionUseCase
	sessions  *chatorchestrator.SessionUseCases
	documents ports.IndexedDocumentStore
	metrics   *events.Metrics
	logger    *zap.Logger
}

// NewServer builds a Server.
func NewServer(
	index *indexing.IndexUseCase,
	reindex *indexing.ReindexUseCase,
	retrievalService *retrieval.Service,
	ask *chatorchestrator.AskQuestionUseCase,
	sessions *chatorchestrator.SessionUseCases,
	documents ports.IndexedDocumentStore,
	metrics *events.Metrics,
	logger *zap.Logger,
) *Server {
	return &Server{
		index:     index,
		reindex:   reindex,
		retrieval: retrievalService,
		ask:       ask,
		sessions:  sessions,
		documents: documents,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes maps every endpoint of the §6 table onto s's handlers.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware())

	api := r.Group("/api/rag")
	{
		api.POST("/documents/index", s.indexDocumentHandler)
		api.POST("/documents/:id/reindex", s.reindexDocumentHandler)
		api.GET("/documents", s.listDocumentsHandler)
		api.GET("/documents/types/counts", s.documentTypeCountsHandler)

		api.POST("/chat/ask", s.askHandler)
		api.POST("/chat/sessions", s.createSessionHandler)
		api.PUT("/chat/sessions/:id", s.renameSessionHandler)
		api.GET("/chat/sessions", s.listSessionsHandler)
		api.DELETE("/chat/sessions/:id", s.deleteSessionHandler)
		api.GET("/chat/sessions/:id/history", s.sessionHistoryHandler)

		api.POST("/search", s.searchHandler)

		api.GET("/system/info", s.systemInfoHandler)
		api.GET("/health", s.healthHandler)
	}
}
