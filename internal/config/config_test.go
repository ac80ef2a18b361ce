package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "artha_documents", cfg.Storage.Key)
	assert.Equal(t, 500, cfg.Chunker.MaxWords)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.1, cfg.Retrieval.Threshold(), 1e-9)
	assert.Equal(t, []string{"openai", "groq", "gemini", "ollama"}, cfg.LLM.Providers)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.Groq.BaseURL)
	assert.Equal(t, "memory", cfg.History.Type)
	assert.Equal(t, 3, cfg.Summarizer.MaxSentences)
}

func TestLoadFillsGapsInPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  type: file
chunker:
  max_words: 200
llm:
  providers: [ollama]
  ollama:
    base_url: http://localhost:11434
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "blobs", filepath.Base(cfg.Storage.Path))
	assert.Equal(t, 200, cfg.Chunker.MaxWords)
	assert.Equal(t, []string{"ollama"}, cfg.LLM.Providers)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.BaseURL)
	assert.Equal(t, "llama3.1", cfg.LLM.Ollama.Model)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARTHA_ADDR", ":9090")
	t.Setenv("ARTHA_STORAGE_TYPE", "memory")
	t.Setenv("ARTHA_TOP_K", "8")
	t.Setenv("ARTHA_CHUNK_WORDS", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://artha@localhost/artha")
	t.Setenv("ARTHA_HISTORY_TYPE", "postgres")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 500, cfg.Chunker.MaxWords)
	assert.Equal(t, "postgres", cfg.History.Type)
	assert.Equal(t, "postgres://artha@localhost/artha", cfg.History.DSN)
}

func TestProviderAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ARTHA_TEST_KEY", "sk-test")

	p := ProviderConfig{APIKeyEnv: "ARTHA_TEST_KEY"}
	assert.Equal(t, "sk-test", p.APIKey())
	assert.Empty(t, ProviderConfig{}.APIKey())
}

func TestLoadKeepsExplicitZeroMinScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  min_score: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Retrieval.MinScore)
	assert.Zero(t, cfg.Retrieval.Threshold())

	assert.InDelta(t, 0.1, RetrievalConfig{}.Threshold(), 1e-9)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Addr = ":4000"
	score := 0.25
	cfg.Retrieval.MinScore = &score

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", loaded.Server.Addr)
	assert.InDelta(t, 0.25, loaded.Retrieval.Threshold(), 1e-9)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "artha", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, ":3001", cfg.Server.Addr)
}
