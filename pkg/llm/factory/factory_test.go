package factory

import (
	"testing"

	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/pkg/llm/huggingface"
	"ai-docrouter-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	t.Run("ollama", func(t *testing.T) {
		p, err := NewLLMProvider(config.AIConfig{LLMProvider: "ollama", LLMModel: "llama3"}, "")
		require.NoError(t, err)
		o, ok := p.(*ollama.OllamaProvider)
		require.True(t, ok)
		assert.Equal(t, "http://localhost:11434", o.BaseURL)
	})

	t.Run("huggingface", func(t *testing.T) {
		p, err := NewLLMProvider(config.AIConfig{LLMProvider: "huggingface"}, "hf_key")
		require.NoError(t, err)
		assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)
	})

	t.Run("huggingface without key", func(t *testing.T) {
		_, err := NewLLMProvider(config.AIConfig{LLMProvider: "huggingface"}, "")
		assert.Error(t, err)
	})

	t.Run("none disables inference", func(t *testing.T) {
		p, err := NewLLMProvider(config.AIConfig{LLMProvider: ProviderNone}, "")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewLLMProvider(config.AIConfig{LLMProvider: "gpt-local"}, "")
		assert.Error(t, err)
	})
}
