package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Ai       AIConfig
	Realtime RealtimeConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection  string
	AutoMigrate bool
}

type StorageConfig struct {
	DefaultBucket   string
	CredentialsFile string
}

type AIConfig struct {
	LLMProvider       string // "gemini", "vertex", "ollama" or "huggingface"
	LLMModel          string
	GoogleGemini      string
	ProjectID         string // enables Vertex AI mode when set
	Region            string
	OllamaBaseURL     string
	HuggingFaceAPIKey string
	HuggingFaceURL    string
	TimeoutSeconds    int // 0 disables the per-call timeout
	RequestsPerSecond float64
}

type RealtimeConfig struct {
	LogFilePath            string
	ConversationFlushTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Storage: StorageConfig{
			DefaultBucket:   getEnv("GCS_DEFAULT_BUCKET", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			ProjectID:         getEnv("GCP_PROJECT_ID", ""),
			Region:            getEnv("GCP_REGION", "us-central1"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:    getEnv("HUGGINGFACE_BASE_URL", ""),
			TimeoutSeconds:    getEnvAsInt("LLM_TIMEOUT_SECONDS", 60),
			RequestsPerSecond: getEnvAsFloat("LLM_REQUESTS_PER_SECOND", 0),
		},
		Realtime: RealtimeConfig{
			LogFilePath:            getEnv("REALTIME_LOG_FILE_PATH", "logs/realtime.log"),
			ConversationFlushTopic: getEnv("CONVERSATION_FLUSH_TOPIC", "LOAN_SESSION_CONVERSATION_FLUSH"),
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
