package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	var got struct {
		Model    string              `json:"model"`
		Stream   bool                `json:"stream"`
		Messages []map[string]string `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Use ELSS for 80C."},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3.1", "tok")
	text, err := p.Generate(context.Background(), "sys", "tax saving?", "ELSS has a 3 year lock-in.")
	require.NoError(t, err)

	assert.Equal(t, "Use ELSS for 80C.", text)
	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0]["role"])
	assert.Equal(t, "sys", got.Messages[0]["content"])
	assert.Equal(t, "Context:\nELSS has a 3 year lock-in.\n\nQuestion: tax saving?", got.Messages[1]["content"])
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing", "").Generate(context.Background(), "s", "p", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaAvailability(t *testing.T) {
	assert.False(t, NewOllamaProvider("", "m", "").Available())
	assert.True(t, NewOllamaProvider("http://localhost:11434", "m", "").Available())
}

func TestOpenAICompatibleGenerate(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Index funds track NIFTY 50."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("groq", srv.URL+"/v1", "gsk-test", "llama-3.1-8b-instant")
	require.True(t, p.Available())

	text, err := p.Generate(context.Background(), "sys", "index funds?", "")
	require.NoError(t, err)
	assert.Equal(t, "Index funds track NIFTY 50.", text)
	assert.Equal(t, "llama-3.1-8b-instant", gotModel)
	assert.Equal(t, "groq", p.Name())
}

func TestOpenAICompatibleNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("openai", srv.URL, "sk", "m").Generate(context.Background(), "s", "p", "")
	assert.Error(t, err)
}

func TestKeylessProvidersUnavailable(t *testing.T) {
	assert.False(t, NewOpenAIProvider("openai", "", "", "gpt-4o-mini").Available())
	assert.False(t, NewGeminiProvider("", "gemini-1.5-flash").Available())
	assert.True(t, NewGeminiProvider("key", "gemini-1.5-flash").Available())
}

func TestGeminiCandidateTextUsesFirstCandidate(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("Gold is "), genai.Text("a hedge.")}}},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("Buy silver.")}}},
	}}
	text, err := candidateText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Gold is a hedge.", text)

	_, err = candidateText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
	_, err = candidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}
