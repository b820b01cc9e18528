// Package config loads application configuration from environment variables.
// All variables use the EXAMGEN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	AI         AIConfig
	Upload     UploadConfig
	Generation GenerationConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// attempt persistence (answers stay session-scoped only).
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL selects the
// in-memory session store.
type CacheConfig struct {
	URL        string
	SessionTTL int // hours
}

// AIConfig holds configuration for the AI providers.
type AIConfig struct {
	OpenAI   OpenAIConfig
	DeepSeek DeepSeekConfig
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// UploadConfig holds document upload settings.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// GenerationConfig holds question generation settings.
type GenerationConfig struct {
	DefaultCount int
	MaxCount     int
	Temperature  float64
	TopicRules   string // optional YAML file with topic classification rules
	Strict       bool   // strict schema validation of generated batches
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with EXAMGEN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("EXAMGEN_SERVER_PORT", 8080),
			Host: envStr("EXAMGEN_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("EXAMGEN_DATABASE_URL", ""),
			MaxConns: envInt("EXAMGEN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("EXAMGEN_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL:        envStr("EXAMGEN_CACHE_URL", ""),
			SessionTTL: envInt("EXAMGEN_CACHE_SESSION_TTL", 24),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey: envStr("EXAMGEN_AI_OPENAI_API_KEY", ""),
				Model:  envStr("EXAMGEN_AI_OPENAI_MODEL", "gpt-4o"),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("EXAMGEN_AI_DEEPSEEK_API_KEY", ""),
			},
		},
		Upload: UploadConfig{
			Dir:      envStr("EXAMGEN_UPLOAD_DIR", "./storage/uploads"),
			MaxBytes: int64(envInt("EXAMGEN_UPLOAD_MAX_BYTES", 50<<20)),
		},
		Generation: GenerationConfig{
			DefaultCount: envInt("EXAMGEN_GENERATION_DEFAULT_COUNT", 5),
			MaxCount:     envInt("EXAMGEN_GENERATION_MAX_COUNT", 10),
			Temperature:  envFloat("EXAMGEN_GENERATION_TEMPERATURE", 0.3),
			TopicRules:   envStr("EXAMGEN_GENERATION_TOPIC_RULES", ""),
			Strict:       envBool("EXAMGEN_GENERATION_STRICT", false),
		},
		Log: LogConfig{
			Level:  envStr("EXAMGEN_LOG_LEVEL", "info"),
			Format: envStr("EXAMGEN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}

	if c.Generation.MaxCount < 1 {
		return fmt.Errorf("EXAMGEN_GENERATION_MAX_COUNT must be positive, got %d", c.Generation.MaxCount)
	}

	if c.Generation.DefaultCount < 1 || c.Generation.DefaultCount > c.Generation.MaxCount {
		return fmt.Errorf("EXAMGEN_GENERATION_DEFAULT_COUNT must be between 1 and %d, got %d",
			c.Generation.MaxCount, c.Generation.DefaultCount)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("EXAMGEN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" || c.AI.DeepSeek.APIKey != ""
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
