package llm

import (
	"context"

	"google.golang.org/genai"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// GoogleProvider implements ports.LLMProvider against the Google
// Generative AI API.
type GoogleProvider struct {
	client *genai.Client
}

// NewGoogleProvider builds a GoogleProvider.
func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, domain.NewProviderUnavailableError("google", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (ports.LLMResponse, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](defaultTemperature),
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}, config)
	if err != nil {
		return ports.LLMResponse{}, domain.NewProviderUnavailableError("google", err)
	}

	text := resp.Text()
	if text == "" {
		return ports.LLMResponse{}, domain.NewProviderUnavailableError("google", nil)
	}

	return ports.LLMResponse{
		Content:   text,
		ModelUsed: model,
	}, nil
}
