// Package config resolves the runtime configuration surface from the
// environment: Postgres/Qdrant/Redis connection strings, the default chat
// model, and the retrieval tuning knobs in domain.RAGConfig. Embedding
// provider settings are read by internal/embedding's Factory, not here.
// Every value has a default except the handful an operator must supply
// (Postgres DSN, Qdrant host); missing required values fail fast at
// startup rather than surfacing as a confusing error mid-request.
package config

import (
	"fmt"
	"os"
	"strconv"

	"qms-rag-core/internal/domain"
)

// ServerConfig is everything cmd/ragserver needs to wire up its
// collaborators, beyond the RAGConfig use-case tuning knobs.
type ServerConfig struct {
	HTTPAddr     string
	PostgresDSN  string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	RedisAddr    string
	MetricsAddr  string
	UploadServiceURL     string
	PermissionServiceURL string
	RAG          domain.RAGConfig
}

const (
	envHTTPAddr       = "HTTP_ADDR"
	envPostgresDSN    = "POSTGRES_DSN"
	envQdrantHost     = "QDRANT_HOST"
	envQdrantPort     = "QDRANT_PORT"
	envQdrantAPIKey   = "QDRANT_API_KEY"
	envRedisAddr      = "REDIS_ADDR"
	envMetricsAddr    = "METRICS_ADDR"
	envCollectionName = "RAG_COLLECTION_NAME"
	envChatModel      = "RAG_DEFAULT_CHAT_MODEL"
	envRetrievalTopK  = "RAG_RETRIEVAL_TOP_K"
	envRetrievalMinScore = "RAG_RETRIEVAL_MIN_SCORE"
	envMaxMultiQuery  = "RAG_MAX_MULTI_QUERY_VARIANTS"
	envUploadServiceURL     = "UPLOAD_SERVICE_URL"
	envPermissionServiceURL = "PERMISSION_SERVICE_URL"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultQdrantPort     = 6334
	defaultMetricsAddr    = ":9100"
	defaultCollectionName = "qms_rag_chunks"
	defaultChatModel      = "gpt-4o-mini"
	defaultRetrievalTopK  = 5
	defaultRetrievalMinScore = 0.7
	defaultMaxMultiQuery  = 5
	defaultUploadServiceURL     = "http://localhost:8090"
	defaultPermissionServiceURL = "http://localhost:8091"
)

// Load reads the environment into a ServerConfig, applying defaults for
// every optional value. It fails fast if POSTGRES_DSN or QDRANT_HOST is
// missing, since neither has a sane default.
func Load() (ServerConfig, error) {
	dsn := os.Getenv(envPostgresDSN)
	if dsn == "" {
		return ServerConfig{}, fmt.Errorf("%s must be set", envPostgresDSN)
	}
	qdrantHost := os.Getenv(envQdrantHost)
	if qdrantHost == "" {
		return ServerConfig{}, fmt.Errorf("%s must be set", envQdrantHost)
	}

	topK, err := intEnv(envRetrievalTopK, defaultRetrievalTopK)
	if err != nil {
		return ServerConfig{}, err
	}
	minScore, err := floatEnv(envRetrievalMinScore, defaultRetrievalMinScore)
	if err != nil {
		return ServerConfig{}, err
	}
	maxVariants, err := intEnv(envMaxMultiQuery, defaultMaxMultiQuery)
	if err != nil {
		return ServerConfig{}, err
	}
	qdrantPort, err := intEnv(envQdrantPort, defaultQdrantPort)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		HTTPAddr:     stringEnv(envHTTPAddr, defaultHTTPAddr),
		PostgresDSN:  dsn,
		QdrantHost:   qdrantHost,
		QdrantPort:   qdrantPort,
		QdrantAPIKey: os.Getenv(envQdrantAPIKey),
		RedisAddr:    stringEnv(envRedisAddr, "localhost:6379"),
		MetricsAddr:  stringEnv(envMetricsAddr, defaultMetricsAddr),
		UploadServiceURL:     stringEnv(envUploadServiceURL, defaultUploadServiceURL),
		PermissionServiceURL: stringEnv(envPermissionServiceURL, defaultPermissionServiceURL),
		RAG: domain.RAGConfig{
			CollectionName:        stringEnv(envCollectionName, defaultCollectionName),
			DefaultChatModel:      stringEnv(envChatModel, defaultChatModel),
			RetrievalTopK:         topK,
			RetrievalMinScore:     minScore,
			MaxMultiQueryVariants: maxVariants,
		},
	}, nil
}

func stringEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func floatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return parsed, nil
}
