package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Blob      BlobConfig
	LLM       LLMConfig
	Translate TranslateConfig
	Worker    WorkerConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds the listen addresses for the current binary
type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string
}

// AuthConfig holds Firebase and auth-service wiring
type AuthConfig struct {
	// Path to a service-account JSON file; empty means application
	// default credentials.
	CredentialsFile string
	// Address of authd's gRPC VerifyToken endpoint, used by the
	// sibling services.
	VerifyAddr string
}

// BlobConfig holds Azure Blob Storage configuration
type BlobConfig struct {
	ConnectionString string
	Container        string
}

// LLMConfig holds story-generation model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// TranslateConfig holds the Linguee proxy and cache configuration
type TranslateConfig struct {
	LingueeURL string
	Timeout    time.Duration
	CacheSize  int
	CacheTTL   time.Duration
}

// WorkerConfig holds the generation worker's tuning knobs
type WorkerConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	ClaimEvery time.Duration
	ClaimBatch int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ""),
			GRPCAddr: getEnv("GRPC_ADDR", ""),
		},
		Auth: AuthConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			VerifyAddr:      getEnv("AUTH_GRPC_ADDR", "localhost:9001"),
		},
		Blob: BlobConfig{
			ConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
			Container:        getEnv("AZURE_STORAGE_CONTAINER", "stories"),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.7),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
		},
		Translate: TranslateConfig{
			LingueeURL: getEnv("LINGUEE_API_URL", "https://linguee-api.fly.dev/api/v2/translations"),
			Timeout:    getEnvAsDuration("LINGUEE_TIMEOUT", 10*time.Second),
			CacheSize:  getEnvAsInt("TRANSLATION_CACHE_SIZE", 1000),
			CacheTTL:   getEnvAsDuration("TRANSLATION_CACHE_TTL", time.Hour),
		},
		Worker: WorkerConfig{
			Workers:    getEnvAsInt("WORKER_COUNT", 4),
			QueueSize:  getEnvAsInt("WORKER_QUEUE_SIZE", 256),
			JobTimeout: getEnvAsDuration("WORKER_JOB_TIMEOUT", 15*time.Minute),
			ClaimEvery: getEnvAsDuration("WORKER_CLAIM_INTERVAL", 5*time.Second),
			ClaimBatch: getEnvAsInt("WORKER_CLAIM_BATCH", 10),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateDatabase checks the settings every DB-backed binary needs.
func (c *Config) ValidateDatabase() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	return nil
}

// ValidateBlob checks the settings the blob-backed binaries need.
func (c *Config) ValidateBlob() error {
	if c.Blob.ConnectionString == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_STORAGE_CONNECTION_STRING is required", ErrInvalidInput)
	}
	if c.Blob.Container == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_STORAGE_CONTAINER is required", ErrInvalidInput)
	}
	return nil
}

// ValidateLLM checks the settings the generation worker needs.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}
