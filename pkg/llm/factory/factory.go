package factory

import (
	"copyflow-be/pkg/llm"
	"copyflow-be/pkg/llm/huggingface"
	"copyflow-be/pkg/llm/ollama"
	"fmt"
	"time"
)

type Params struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "ollama":
		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, p.Model, p.Timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(p.APIKey, p.BaseURL, p.Model, p.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
