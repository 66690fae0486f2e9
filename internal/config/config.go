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
	Session  SessionConfig
	Gateway  GatewayConfig
	Ai       AIConfig
	Storage  StorageConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StageLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	StageTopic         string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// CorsCredentials reports whether browsers may send credentials. Fiber refuses
// credentials together with a wildcard origin, so they need an explicit list.
func (a AppConfig) CorsCredentials() bool {
	for _, origin := range strings.Split(a.CorsAllowedOrigins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return false
		}
	}
	return strings.TrimSpace(a.CorsAllowedOrigins) != ""
}

type DatabaseConfig struct {
	Connection   string
	LogLevel     string
	MaxOpenConns int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Store  string // "memory" or "redis"
}

type GatewayConfig struct {
	Mode    string // "remote", "llm" or "fallback"
	URL     string
	Timeout time.Duration
}

type AIConfig struct {
	LLMProvider    string // "ollama" or "huggingface"
	LLMModel       string
	OllamaBaseURL  string
	HuggingFaceURL string
	HuggingFaceKey string
}

type StorageConfig struct {
	PagesFile     string
	KeywordsFile  string
	SqlitePath    string
	MaxUploadSize int
	EventsMaxAge  time.Duration
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			StageLogFilePath:   getEnv("STAGE_LOG_FILE_PATH", "logs/stages.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			StageTopic:         getEnv("STAGE_EVENTS_TOPIC", "STAGE_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "copyflow-dev-secret"),
			TTL:    time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
			Store:  strings.ToLower(getEnv("SESSION_STORE", "memory")),
		},
		Gateway: GatewayConfig{
			Mode:    strings.ToLower(getEnv("GATEWAY_MODE", "remote")),
			URL:     getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout: getEnvAsDuration("GATEWAY_TIMEOUT", 60*time.Second),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Storage: StorageConfig{
			PagesFile:     getEnv("PAGES_FILE", ""),
			KeywordsFile:  getEnv("KEYWORDS_FILE", ""),
			SqlitePath:    getEnv("SQLITE_PATH", ""),
			MaxUploadSize: getEnvAsInt("MAX_UPLOAD_SIZE_MB", 10) * 1024 * 1024,
			EventsMaxAge:  getEnvAsDuration("EVENTS_MAX_AGE", 72*time.Hour),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
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
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
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

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
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
