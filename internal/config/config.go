package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Agents   AgentsConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	PipelineTopic      string
}

type DatabaseConfig struct {
	// Backend selects the session/conversation store: "postgres" or "memory".
	Backend    string
	Connection string
}

type AgentsConfig struct {
	BackendURL         string
	BackendFallbackURL string
	ConnectionTimeout  time.Duration
}

type SessionConfig struct {
	Timeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			PipelineTopic:      getEnv("PIPELINE_TOPIC_NAME", "RUN_RECOMMENDATION_PIPELINE"),
		},
		Database: DatabaseConfig{
			Backend:    getEnv("STORE_BACKEND", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Agents: AgentsConfig{
			BackendURL:         getEnv("AGENTS_API_URL", "http://localhost:8080"),
			BackendFallbackURL: getEnv("AGENTS_API_URL_FALLBACK", ""),
			ConnectionTimeout:  getEnvAsDuration("AGENTS_CONNECTION_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			Timeout: getEnvAsDuration("SESSION_TIMEOUT", time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
