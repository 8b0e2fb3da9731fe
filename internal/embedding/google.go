package embedding

import (
	"context"

	"google.golang.org/genai"

	"qms-rag-core/internal/domain"
)

// DefaultGoogleModel is used when GOOGLE_EMBEDDING_MODEL is unset.
const DefaultGoogleModel = "text-embedding-004"

// GoogleDimension is the vector length text-embedding-004 returns.
const GoogleDimension = 768

// GoogleProvider embeds text via the Google Generative AI embeddings API.
type GoogleProvider struct {
	client *genai.Client
	model  string
}

// NewGoogleProvider builds a GoogleProvider.
func NewGoogleProvider(ctx context.Context, apiKey, model string) (*GoogleProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, domain.NewProviderUnavailableError("google", err)
	}
	return &GoogleProvider{client: client, model: model}, nil
}

func (p *GoogleProvider) Name() string   { return "google:" + p.model }
func (p *GoogleProvider) Dimension() int { return GoogleDimension }

func (p *GoogleProvider) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingVector{}, err
	}
	return vectors[0], nil
}

func (p *GoogleProvider) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, domain.NewProviderUnavailableError("google", err)
	}

	vectors := make([]domain.EmbeddingVector, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		ev, err := domain.NewEmbeddingVector(e.Values, p.model)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, ev)
	}
	return vectors, nil
}

// probeGoogle makes a trivial embedding call to check whether apiKey works.
func probeGoogle(ctx context.Context, apiKey, model string) bool {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return false
	}
	_, err = client.Models.EmbedContent(ctx, model, []*genai.Content{genai.NewContentFromText("test", genai.RoleUser)}, nil)
	return err == nil
}
