package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the onboarding backend.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Chat      ChatConfig
	Documents DocumentsConfig
	Telemetry TelemetryConfig
	Auth      AuthConfig
}

type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty = in-memory store.
	URL            string
	MaxConnections int
}

// ChatConfig configures the chat grounding pipeline.
type ChatConfig struct {
	// OllamaEndpoint is the base URL of the local model server.
	OllamaEndpoint string
	// Models are the candidate model names tried in priority order.
	Models []string
	// ModelTimeout bounds each individual model call.
	ModelTimeout time.Duration
	// PolicyDir holds one reference text file per policy topic.
	PolicyDir string
	// CacheSize bounds the response cache (entries). 0 = unbounded map.
	CacheSize int
}

// DocumentsConfig configures where uploaded documents are inspected.
type DocumentsConfig struct {
	// UploadDir is the local per-employee upload root. Used when S3Endpoint
	// is empty.
	UploadDir string

	// S3 settings for object-store backed uploads.
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

type AuthConfig struct {
	// HRAPIKeys guard the /api/v1/hr routes. Empty = auth disabled.
	HRAPIKeys []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("ONBOARD_PORT", 8000),
		Version: envStr("ONBOARD_VERSION", "1.2.0"),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Chat: ChatConfig{
			OllamaEndpoint: envStr("ONBOARD_OLLAMA_ENDPOINT", "http://localhost:11434"),
			Models:         envList("ONBOARD_CHAT_MODELS", []string{"mistral", "phi"}),
			ModelTimeout:   envDur("ONBOARD_MODEL_TIMEOUT", 30*time.Second),
			PolicyDir:      envStr("ONBOARD_POLICY_DIR", "assets/policies"),
			CacheSize:      envInt("ONBOARD_CHAT_CACHE_SIZE", 2048),
		},
		Documents: DocumentsConfig{
			UploadDir:   envStr("ONBOARD_UPLOAD_DIR", "uploads"),
			S3Endpoint:  envStr("ONBOARD_S3_ENDPOINT", ""),
			S3Bucket:    envStr("ONBOARD_S3_BUCKET", "onboard-documents"),
			S3AccessKey: envStr("ONBOARD_S3_ACCESS_KEY", ""),
			S3SecretKey: envStr("ONBOARD_S3_SECRET_KEY", ""),
			S3UseSSL:    envBool("ONBOARD_S3_USE_SSL", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "onboard-backend"),
		},
		Auth: AuthConfig{
			HRAPIKeys: envList("ONBOARD_HR_API_KEYS", nil),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
