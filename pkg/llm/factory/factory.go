package factory

import (
	"fmt"

	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/pkg/llm"
	"ai-docrouter-be/pkg/llm/huggingface"
	"ai-docrouter-be/pkg/llm/ollama"
)

// ProviderNone disables inference; every component runs its deterministic path.
const ProviderNone = "none"

// NewLLMProvider builds the configured backend. A nil provider with a nil
// error means inference is switched off.
func NewLLMProvider(cfg config.AIConfig, apiKey string) (llm.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.LLMModel), nil
	case "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires HUGGINGFACE_API_KEY")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, cfg.HuggingFaceBaseURL, cfg.LLMModel), nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
