package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the textsense server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Analysis AnalysisConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AnalysisConfig bounds the submission path and the background worker pool.
type AnalysisConfig struct {
	MaxTextLength     int
	RateLimitPerMin   int
	WorkerConcurrency int
	WorkerQueueSize   int
}

// AIConfig controls provider selection and the retry policy around each call.
// MaxAttempts counts total attempts, not re-tries: 3 means one call plus at
// most two retries.
type AIConfig struct {
	Provider                 string
	InferenceTimeout         time.Duration
	MaxAttempts              int
	BackoffBase              time.Duration
	RateLimitBackoffMultiple int
	OpenAI                   OpenAIConfig
	Anthropic                AnthropicConfig
	Ollama                   OllamaConfig
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	SimpleModel string
	DeepModel   string
}

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	SimpleModel string
	DeepModel   string
}

type OllamaConfig struct {
	BaseURL     string
	SimpleModel string
	DeepModel   string
}

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("TEXTSENSE_PORT", 8080),
			Env:  envString("TEXTSENSE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Analysis: AnalysisConfig{
			MaxTextLength:     envInt("MAX_TEXT_LENGTH", 100000),
			RateLimitPerMin:   envInt("RATE_LIMIT_PER_MIN", 60),
			WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),
			WorkerQueueSize:   envInt("WORKER_QUEUE_SIZE", 64),
		},
		AI: AIConfig{
			Provider:                 os.Getenv("AI_PROVIDER"),
			InferenceTimeout:         envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			MaxAttempts:              envInt("AI_MAX_ATTEMPTS", 3),
			BackoffBase:              envDuration("AI_BACKOFF_BASE", time.Second),
			RateLimitBackoffMultiple: envInt("AI_RATE_LIMIT_BACKOFF_MULTIPLE", 2),
			OpenAI: OpenAIConfig{
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				BaseURL:     envString("OPENAI_BASE_URL", "https://api.openai.com"),
				SimpleModel: envString("OPENAI_SIMPLE_MODEL", "gpt-4o-mini"),
				DeepModel:   envString("OPENAI_DEEP_MODEL", "gpt-4o-2024-08-06"),
			},
			Anthropic: AnthropicConfig{
				APIKey:      os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL:     envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				SimpleModel: envString("ANTHROPIC_SIMPLE_MODEL", "claude-3-5-haiku-20241022"),
				DeepModel:   envString("ANTHROPIC_DEEP_MODEL", "claude-sonnet-4-5-20250929"),
			},
			Ollama: OllamaConfig{
				BaseURL:     envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				SimpleModel: envString("OLLAMA_SIMPLE_MODEL", "llama3"),
				DeepModel:   envString("OLLAMA_DEEP_MODEL", "llama3"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Analysis.MaxTextLength <= 0 {
		return fmt.Errorf("MAX_TEXT_LENGTH must be positive, got %d", c.Analysis.MaxTextLength)
	}
	if c.Analysis.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.Analysis.WorkerConcurrency)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, anthropic, ollama; got %q", c.AI.Provider)
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1, got %d", c.AI.MaxAttempts)
	}
	if c.AI.RateLimitBackoffMultiple < 1 {
		return fmt.Errorf("AI_RATE_LIMIT_BACKOFF_MULTIPLE must be at least 1, got %d", c.AI.RateLimitBackoffMultiple)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
