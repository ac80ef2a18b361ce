package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google's Gemini models.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) Available() bool { return p.apiKey != "" }

func (p *GeminiProvider) Generate(ctx context.Context, system, prompt, contextText string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(UserMessage(prompt, contextText)))
	if err != nil {
		return "", err
	}
	return candidateText(resp)
}

// candidateText joins the text parts of the first candidate only.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response generated")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}
