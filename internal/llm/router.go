// Package llm implements the chat-completion side of the provider split:
// an OpenAI adapter, a Google adapter, and a routing table that maps the
// handful of model ids the QMS chat UI exposes onto one of the two,
// substituting a model that silently doesn't exist yet for one that does.
package llm

import (
	"context"

	"go.uber.org/zap"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// Model ids the chat orchestrator accepts from callers.
const (
	ModelGPT4oMini      = "gpt-4o-mini"
	ModelGPT5Mini       = "gpt-5-mini"
	ModelGemini25Flash  = "gemini-2.5-flash"
	defaultModel        = ModelGPT4oMini
	providerOpenAI      = "openai"
	providerGoogle      = "google"
)

// modelEntry describes one routable model: which provider serves it and
// which model id is actually sent over the wire, since gpt-5-mini doesn't
// exist at OpenAI yet and is rerouted to gpt-4o-mini.
type modelEntry struct {
	provider      string
	wireModel     string
}

var modelTable = map[string]modelEntry{
	ModelGPT4oMini:     {provider: providerOpenAI, wireModel: ModelGPT4oMini},
	ModelGPT5Mini:      {provider: providerOpenAI, wireModel: ModelGPT4oMini},
	ModelGemini25Flash: {provider: providerGoogle, wireModel: ModelGemini25Flash},
}

// Router picks between an OpenAI and a Google ports.LLMProvider based on
// the requested model id, applying the gpt-5-mini substitution and falling
// back to the default model for anything it doesn't recognize.
type Router struct {
	openai ports.LLMProvider
	google ports.LLMProvider
	logger *zap.Logger
}

// NewRouter builds a Router. Either provider may be nil if its API key
// wasn't configured; routing to a nil provider returns
// ProviderUnavailableError.
func NewRouter(openaiProvider, googleProvider ports.LLMProvider, logger *zap.Logger) *Router {
	return &Router{openai: openaiProvider, google: googleProvider, logger: logger}
}

// Complete routes requestedModel to the correct provider and runs the
// completion. The response's ModelUsed is the wire model that actually
// served the call, which differs from requestedModel after a substitution.
func (r *Router) Complete(ctx context.Context, requestedModel, systemPrompt, userPrompt string) (ports.LLMResponse, error) {
	entry, ok := modelTable[requestedModel]
	if !ok {
		r.logger.Warn("unknown chat model requested, falling back to default", zap.String("requested_model", requestedModel))
		entry = modelTable[defaultModel]
	}

	if entry.wireModel != requestedModel {
		r.logger.Warn("model substitution in effect",
			zap.String("requested_model", requestedModel),
			zap.String("wire_model", entry.wireModel))
	}

	provider := r.providerFor(entry.provider)
	if provider == nil {
		return ports.LLMResponse{}, domain.NewProviderUnavailableError(entry.provider, nil)
	}

	resp, err := provider.Complete(ctx, entry.wireModel, systemPrompt, userPrompt)
	if err != nil {
		return ports.LLMResponse{}, err
	}
	resp.ModelUsed = entry.wireModel
	return resp, nil
}

func (r *Router) providerFor(name string) ports.LLMProvider {
	switch name {
	case providerOpenAI:
		return r.openai
	case providerGoogle:
		return r.google
	default:
		return nil
	}
}

// Name identifies the router as an LLMProvider itself, so chatorchestrator
// can depend on the same ports.LLMProvider interface regardless of whether
// it's talking to a single adapter or this routing layer.
func (r *Router) Name() string { return "router" }
