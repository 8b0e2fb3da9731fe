package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
)

// OpenAIProvider implements ports.LLMProvider against the OpenAI chat
// completions API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds an OpenAIProvider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (ports.LLMResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return ports.LLMResponse{}, domain.NewProviderUnavailableError("openai", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ports.LLMResponse{}, domain.NewProviderUnavailableError("openai", nil)
	}

	return ports.LLMResponse{
		Content:   resp.Choices[0].Message.Content,
		ModelUsed: model,
	}, nil
}
