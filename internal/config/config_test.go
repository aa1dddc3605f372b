package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "")
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
	assert.Equal(t, 30*time.Second, cfg.Ai.InferenceTimeout)
	assert.False(t, cfg.UseDurableStorage())
}

func TestUseDurableStorage(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want bool
	}{
		{name: "empty", dsn: "", want: false},
		{name: "whitespace only", dsn: "   ", want: false},
		{name: "dsn present", dsn: "host=localhost user=app dbname=app", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: DatabaseConfig{Connection: tt.dsn}}
			assert.Equal(t, tt.want, cfg.UseDurableStorage())
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("CFG_TEST_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("CFG_TEST_MISSING_INT", 7))
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4318")

	cfg := Load()

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "jaeger:4318", cfg.Tracing.OtlpEndpoint)
	assert.Equal(t, "ai-docrouter-backend", cfg.Tracing.ServiceName)
}
