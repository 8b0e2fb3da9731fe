// Package embedding wires the three embedding provider tiers (OpenAI,
// Google, local) and the auto-selection logic that picks among them,
// plus a Redis-backed cache wrapper any of them can be wrapped in.
package embedding

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"qms-rag-core/internal/ports"
)

// Env var names, matching the original configuration surface exactly so
// operators don't have to relearn a naming scheme.
const (
	EnvProvider          = "EMBEDDING_PROVIDER"
	EnvModel             = "EMBEDDING_MODEL"
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvOpenAIGPT5MiniKey = "OPENAI_GPT5_MINI_API_KEY"
	EnvGoogleKey         = "GOOGLE_AI_API_KEY"
	EnvOpenAIEmbedModel  = "OPENAI_EMBEDDING_MODEL"
	EnvGoogleEmbedModel  = "GOOGLE_EMBEDDING_MODEL"
)

const probeTimeout = 5 * time.Second

// Factory builds the active ports.EmbeddingProvider from environment
// configuration, probing hosted providers in priority order when the mode
// is "auto".
type Factory struct {
	logger *zap.Logger
}

// NewFactory builds a Factory.
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger}
}

// Build resolves EMBEDDING_PROVIDER (default "auto") into a concrete
// provider. Priority in auto mode: OpenAI (GPT-5-mini key preferred, then
// standard key) -> Google -> local.
func (f *Factory) Build(ctx context.Context) (ports.EmbeddingProvider, error) {
	provider := os.Getenv(EnvProvider)
	if provider == "" {
		provider = "auto"
	}

	openAIKey := firstNonEmpty(os.Getenv(EnvOpenAIGPT5MiniKey), os.Getenv(EnvOpenAIKey))
	googleKey := os.Getenv(EnvGoogleKey)

	degraded := false
	if provider == "auto" {
		provider = f.selectBestProvider(ctx, openAIKey, googleKey)
		degraded = provider == "local" && (openAIKey != "" || googleKey != "")
	}

	switch provider {
	case "openai":
		if openAIKey == "" {
			f.logger.Warn("openai provider requested but no API key configured, falling back to local")
			return f.newLocal(true), nil
		}
		model := firstNonEmpty(os.Getenv(EnvOpenAIEmbedModel), DefaultOpenAIModel)
		return NewOpenAIProvider(openAIKey, model), nil
	case "google", "gemini":
		if googleKey == "" {
			f.logger.Warn("google provider requested but no API key configured, falling back to local")
			return f.newLocal(true), nil
		}
		model := firstNonEmpty(os.Getenv(EnvGoogleEmbedModel), DefaultGoogleModel)
		return NewGoogleProvider(ctx, googleKey, model)
	case "local":
		return f.newLocal(degraded), nil
	default:
		f.logger.Warn("unknown embedding provider, using local", zap.String("provider", provider))
		return f.newLocal(false), nil
	}
}

// selectBestProvider probes OpenAI then Google with a trivial embedding
// call and returns the first that answers; local is the final fallback.
func (f *Factory) selectBestProvider(ctx context.Context, openAIKey, googleKey string) string {
	if openAIKey != "" {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		ok := probeOpenAI(probeCtx, openAIKey, DefaultOpenAIModel)
		cancel()
		if ok {
			f.logger.Info("openai embeddings available", zap.Int("dimension", OpenAIDimension))
			return "openai"
		}
	}

	if googleKey != "" {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		ok := probeGoogle(probeCtx, googleKey, DefaultGoogleModel)
		cancel()
		if ok {
			f.logger.Info("google embeddings available", zap.Int("dimension", GoogleDimension))
			return "google"
		}
	}

	f.logger.Info("no hosted embedding provider available, using local fallback")
	return "local"
}

func (f *Factory) newLocal(degraded bool) ports.EmbeddingProvider {
	model := os.Getenv(EnvModel)
	if model == "" {
		model = DefaultLocalModel
	}
	if degraded {
		model += "-mock"
	}
	return NewLocalProvider(model, LocalDimension)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
