package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AppName      string   `yaml:"app_name"`
	AllowOrigins []string `yaml:"allow_origins"`
	BodyLimitMB  int      `yaml:"body_limit_mb"`
}

// StorageConfig selects the blob backend holding the chunk collection.
type StorageConfig struct {
	Type string `yaml:"type"` // memory, file, sqlite
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxWords int `yaml:"max_words"`
}

// RetrievalConfig configures similarity search.
// MinScore is a pointer so an explicit 0 survives default filling.
type RetrievalConfig struct {
	TopK     int      `yaml:"top_k"`
	MinScore *float64 `yaml:"min_score"`
}

// Threshold returns the minimum similarity a search result must exceed.
func (r RetrievalConfig) Threshold() float64 {
	if r.MinScore == nil {
		return defaultMinScore
	}
	return *r.MinScore
}

// ProviderConfig holds connection details for one LLM provider.
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Model     string `yaml:"model,omitempty"`
}

// APIKey resolves the provider's key from the environment.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// LLMConfig lists providers in priority order and their settings.
type LLMConfig struct {
	Providers   []string       `yaml:"providers"`
	TimeoutSecs int            `yaml:"timeout_secs"`
	OpenAI      ProviderConfig `yaml:"openai"`
	Groq        ProviderConfig `yaml:"groq"`
	Gemini      ProviderConfig `yaml:"gemini"`
	Ollama      ProviderConfig `yaml:"ollama"`
}

// AlphaVantageConfig configures the Alpha Vantage quote provider.
type AlphaVantageConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
}

// APIKey resolves the Alpha Vantage key from the environment.
func (a AlphaVantageConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

// MarketConfig configures the market data gateway.
type MarketConfig struct {
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage"`
}

// HistoryConfig selects the query/upload log backend.
type HistoryConfig struct {
	Type string `yaml:"type"` // memory, sqlite, postgres
	DSN  string `yaml:"dsn"`
}

// SummarizerConfig configures ingest summaries.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	LLM        LLMConfig        `yaml:"llm"`
	Market     MarketConfig     `yaml:"market"`
	History    HistoryConfig    `yaml:"history"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/artha/config.yaml.
// If neither exists, it writes defaults to ~/.config/artha/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

const defaultMinScore = 0.1

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "artha", "config.yaml"), nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".artha"
	}
	return filepath.Join(home, ".artha")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3001"
	}
	if cfg.Server.AppName == "" {
		cfg.Server.AppName = "ArthaGPT"
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Server.BodyLimitMB == 0 {
		cfg.Server.BodyLimitMB = 10
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "sqlite"
	}
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Type {
		case "sqlite":
			cfg.Storage.Path = filepath.Join(defaultDataDir(), "artha.db")
		case "file":
			cfg.Storage.Path = filepath.Join(defaultDataDir(), "blobs")
		}
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = "artha_documents"
	}

	if cfg.Chunker.MaxWords == 0 {
		cfg.Chunker.MaxWords = 500
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinScore == nil {
		score := defaultMinScore
		cfg.Retrieval.MinScore = &score
	}

	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = []string{"openai", "groq", "gemini", "ollama"}
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	setProviderDefaults(&cfg.LLM.OpenAI, "https://api.openai.com/v1", "OPENAI_API_KEY", "gpt-4o-mini")
	setProviderDefaults(&cfg.LLM.Groq, "https://api.groq.com/openai/v1", "GROQ_API_KEY", "llama-3.1-8b-instant")
	setProviderDefaults(&cfg.LLM.Gemini, "", "GEMINI_API_KEY", "gemini-1.5-flash")
	setProviderDefaults(&cfg.LLM.Ollama, "", "OLLAMA_API_KEY", "llama3.1")

	av := &cfg.Market.AlphaVantage
	if av.BaseURL == "" {
		av.BaseURL = "https://www.alphavantage.co"
	}
	if av.APIKeyEnv == "" {
		av.APIKeyEnv = "ALPHAVANTAGE_API_KEY"
	}
	if av.RequestsPerMinute == 0 {
		av.RequestsPerMinute = 5
	}
	if av.TimeoutSecs == 0 {
		av.TimeoutSecs = 10
	}

	if cfg.History.Type == "" {
		cfg.History.Type = "memory"
	}
	if cfg.History.Type == "sqlite" && cfg.History.DSN == "" {
		cfg.History.DSN = filepath.Join(defaultDataDir(), "history.db")
	}

	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}
}

func setProviderDefaults(p *ProviderConfig, baseURL, keyEnv, model string) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if p.APIKeyEnv == "" {
		p.APIKeyEnv = keyEnv
	}
	if p.Model == "" {
		p.Model = model
	}
}

// applyEnvOverrides lets deployments override file settings with ARTHA_* variables.
func applyEnvOverrides(cfg *AppConfig) {
	cfg.Server.Addr = envOrDefault("ARTHA_ADDR", cfg.Server.Addr)
	cfg.Storage.Type = envOrDefault("ARTHA_STORAGE_TYPE", cfg.Storage.Type)
	cfg.Storage.Path = envOrDefault("ARTHA_STORAGE_PATH", cfg.Storage.Path)
	cfg.History.Type = envOrDefault("ARTHA_HISTORY_TYPE", cfg.History.Type)
	cfg.History.DSN = envOrDefault("ARTHA_HISTORY_DSN", envOrDefault("DATABASE_URL", cfg.History.DSN))
	cfg.LLM.Ollama.BaseURL = envOrDefault("OLLAMA_BASE_URL", cfg.LLM.Ollama.BaseURL)
	cfg.Chunker.MaxWords = envOrDefaultInt("ARTHA_CHUNK_WORDS", cfg.Chunker.MaxWords)
	cfg.Retrieval.TopK = envOrDefaultInt("ARTHA_TOP_K", cfg.Retrieval.TopK)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
