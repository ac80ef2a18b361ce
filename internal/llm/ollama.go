package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaProvider uses the Ollama REST API.
type OllamaProvider struct {
	baseURL    string
	model      string
	token      string // bearer token for hosted Ollama, empty for local
	httpClient *http.Client
}

func NewOllamaProvider(baseURL, model, token string) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		token:      token,
		httpClient: &http.Client{},
	}
}

func (o *OllamaProvider) Name() string    { return "ollama" }
func (o *OllamaProvider) Available() bool { return o.baseURL != "" }

func (o *OllamaProvider) Generate(ctx context.Context, system, prompt, contextText string) (string, error) {
	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": UserMessage(prompt, contextText)},
		},
		"stream": false,
	}
	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama chat decode: %w", err)
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
