package factory

import (
	"context"
	"fmt"

	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/llm/gemini"
	"loan-assist-be/pkg/llm/huggingface"
	"loan-assist-be/pkg/llm/ollama"
)

type ProviderConfig struct {
	Provider          string // "gemini", "ollama" or "huggingface"
	Model             string
	OllamaBaseURL     string
	GeminiAPIKey      string
	HuggingFaceAPIKey string
	HuggingFaceURL    string
	ProjectID         string
	Region            string
	RequestsPerSecond float64
}

func NewLLMProvider(ctx context.Context, cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "vertex", "":
		return gemini.NewGeminiProvider(ctx, gemini.Config{
			APIKey:            cfg.GeminiAPIKey,
			ProjectID:         cfg.ProjectID,
			Region:            cfg.Region,
			Model:             cfg.Model,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		if cfg.HuggingFaceAPIKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceAPIKey, cfg.HuggingFaceURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
