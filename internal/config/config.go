package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ActivityLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	HuggingFace string
}

type AIConfig struct {
	LLMProvider        string // "ollama", "huggingface" or "none"
	LLMModel           string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL      string
	HuggingFaceBaseURL string
	InferenceTimeout   time.Duration
}

type TracingConfig struct {
	Enabled      bool
	OtlpEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ActivityLogPath:    getEnv("ACTIVITY_LOG_FILE_PATH", "logs/activity.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", "ollama")),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			InferenceTimeout:   time.Duration(getEnvAsInt("INFERENCE_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:      getEnv("OTEL_ENABLED", "false") == "true",
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "ai-docrouter-backend"),
		},
	}
}

// UseDurableStorage reports whether durable storage connection parameters are present.
func (c *Config) UseDurableStorage() bool {
	return strings.TrimSpace(c.Database.Connection) != ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
