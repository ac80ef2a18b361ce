package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API.
// Groq is served by the same client with a different base URL.
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
	hasKey bool
}

// NewOpenAIProvider creates a provider named name against baseURL.
func NewOpenAIProvider(name, baseURL, apiKey, model string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(config),
		model:  model,
		hasKey: apiKey != "",
	}
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) Available() bool { return p.hasKey }

func (p *OpenAIProvider) Generate(ctx context.Context, system, prompt, contextText string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(prompt, contextText)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}
