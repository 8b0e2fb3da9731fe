// Command ragserver is the composition root: it builds every collaborator
// (Postgres, Qdrant, Redis, the embedding/LLM providers, the event sink),
// wires them into the use cases, and serves the HTTP API, following the
// teacher's build-clients-then-register-routes main() shape.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"qms-rag-core/internal/chatorchestrator"
	"qms-rag-core/internal/collaborators"
	"qms-rag-core/internal/config"
	"qms-rag-core/internal/embedding"
	"qms-rag-core/internal/events"
	"qms-rag-core/internal/httpapi"
	"qms-rag-core/internal/indexing"
	"qms-rag-core/internal/llm"
	"qms-rag-core/internal/metadata"
	"qms-rag-core/internal/ports"
	"qms-rag-core/internal/retrieval"
	"qms-rag-core/internal/vectorstore"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	store, err := metadata.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer store.Close()

	vectors, err := vectorstore.NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, logger)
	if err != nil {
		logger.Fatal("failed to connect to qdrant", zap.Error(err))
	}

	redisOpt, err := redis.ParseURL("redis://" + cfg.RedisAddr)
	if err != nil {
		logger.Fatal("failed to parse redis address", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpt)

	embeddingFactory := embedding.NewFactory(logger)
	embedder, err := embeddingFactory.Build(ctx)
	if err != nil {
		logger.Fatal("failed to build embedding provider", zap.Error(err))
	}
	cachedEmbedder := embedding.NewCache(embedder, redisClient)

	var googleProvider ports.LLMProvider
	if g, err := llm.NewGoogleProvider(ctx, os.Getenv("GOOGLE_AI_API_KEY")); err != nil {
		logger.Warn("google llm provider unavailable, gemini requests will fail", zap.Error(err))
	} else {
		googleProvider = g
	}
	openAIProvider := llm.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"))
	router := llm.NewRouter(openAIProvider, googleProvider, logger)

	sink := events.NewSink(logger)
	registry := prometheus.NewRegistry()
	metrics := events.NewMetrics(registry)
	metrics.Subscribe(sink)

	documents := metadata.NewIndexedDocumentStore(store)
	chunks := metadata.NewChunkStore(store)
	chatStore := metadata.NewChatStore(store)

	uploads := collaborators.NewUploadSourceClient(cfg.UploadServiceURL)
	permissions := collaborators.NewPermissionServiceClient(cfg.PermissionServiceURL)

	indexUseCase := indexing.NewIndexUseCase(uploads, permissions, documents, chunks, cachedEmbedder, vectors, sink, cfg.RAG.CollectionName, logger)
	reindexUseCase := indexing.NewReindexUseCase(uploads, permissions, documents, chunks, cachedEmbedder, vectors, sink, cfg.RAG.CollectionName, indexUseCase.Locks(), logger)

	retrievalService := retrieval.NewService(cachedEmbedder, vectors, cfg.RAG.CollectionName, logger)
	multiQuery := chatorchestrator.NewMultiQueryService(router)
	askUseCase := chatorchestrator.NewAskQuestionUseCase(retrievalService, chatStore, permissions, router, multiQuery, sink, logger)
	sessionUseCases := chatorchestrator.NewSessionUseCases(chatStore)

	server := httpapi.NewServer(indexUseCase, reindexUseCase, retrievalService, askUseCase, sessionUseCases, documents, metrics, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	server.RegisterRoutes(r)

	go serveMetrics(cfg.MetricsAddr, registry, logger)

	logger.Info("starting qms-rag-core", zap.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("starting metrics server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
