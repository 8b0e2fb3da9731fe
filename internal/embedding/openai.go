package embedding

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"qms-rag-core/internal/domain"
)

// DefaultOpenAIModel is used when OPENAI_EMBEDDING_MODEL is unset.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIDimension is the vector length text-embedding-3-small returns.
const OpenAIDimension = 1536

// OpenAIProvider embeds text via the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds an OpenAIProvider.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model}
}

func (p *OpenAIProvider) Name() string    { return "openai:" + p.model }
func (p *OpenAIProvider) Dimension() int  { return OpenAIDimension }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingVector{}, err
	}
	return vectors[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, domain.NewProviderUnavailableError("openai", err)
	}

	vectors := make([]domain.EmbeddingVector, 0, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		ev, err := domain.NewEmbeddingVector(vec, p.model)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, ev)
	}
	return vectors, nil
}

// probeOpenAI makes a trivial embedding call to check whether apiKey has
// access to the embeddings API, mirroring the Python factory's
// client.embeddings.create(model=..., input="test") probe.
func probeOpenAI(ctx context.Context, apiKey, model string) bool {
	client := openai.NewClient(apiKey)
	_, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{"test"},
		Model: openai.EmbeddingModel(model),
	})
	return err == nil
}
