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
	Backends BackendsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// BackendsConfig holds the base URLs of the collaborating services the
// console orchestrates: the document-scoped RAG service, the unified
// database/LLM query service and the strategy agent.
type BackendsConfig struct {
	DocQueryBaseURL      string
	DocQueryTopK         int
	UnifiedQueryBaseURL  string
	StrategyAgentBaseURL string
	RequestTimeoutSec    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Backends: BackendsConfig{
			DocQueryBaseURL:      getEnv("DOC_QUERY_BASE_URL", "http://localhost:8000"),
			DocQueryTopK:         getEnvAsInt("DOC_QUERY_TOP_K", 5),
			UnifiedQueryBaseURL:  getEnv("UNIFIED_QUERY_BASE_URL", "http://localhost:8080"),
			StrategyAgentBaseURL: getEnv("STRATEGY_AGENT_BASE_URL", "http://localhost:8001"),
			RequestTimeoutSec:    getEnvAsInt("BACKEND_REQUEST_TIMEOUT_SEC", 30),
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
