package llm

import (
	"log/slog"

	"arthagpt/internal/config"
	"arthagpt/internal/domain"
)

// ProvidersFromConfig builds providers in the order cfg.Providers lists them.
// Unknown names are logged and skipped.
func ProvidersFromConfig(cfg config.LLMConfig, logger *slog.Logger) []domain.LLMProvider {
	if logger == nil {
		logger = slog.Default()
	}
	var out []domain.LLMProvider
	for _, name := range cfg.Providers {
		switch name {
		case "openai":
			out = append(out, NewOpenAIProvider("openai", cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey(), cfg.OpenAI.Model))
		case "groq":
			out = append(out, NewOpenAIProvider("groq", cfg.Groq.BaseURL, cfg.Groq.APIKey(), cfg.Groq.Model))
		case "gemini":
			out = append(out, NewGeminiProvider(cfg.Gemini.APIKey(), cfg.Gemini.Model))
		case "ollama":
			out = append(out, NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.APIKey()))
		default:
			logger.Warn("unknown llm provider in config", "provider", name)
		}
	}
	return out
}
