package config

import (
	"os"
	"testing"
)

// clearEnv unsets all EXAMGEN_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"EXAMGEN_SERVER_PORT",
		"EXAMGEN_SERVER_HOST",
		"EXAMGEN_DATABASE_URL",
		"EXAMGEN_DATABASE_MAX_CONNS",
		"EXAMGEN_DATABASE_MIN_CONNS",
		"EXAMGEN_CACHE_URL",
		"EXAMGEN_CACHE_SESSION_TTL",
		"EXAMGEN_AI_OPENAI_API_KEY",
		"EXAMGEN_AI_OPENAI_MODEL",
		"EXAMGEN_AI_DEEPSEEK_API_KEY",
		"EXAMGEN_UPLOAD_DIR",
		"EXAMGEN_UPLOAD_MAX_BYTES",
		"EXAMGEN_GENERATION_DEFAULT_COUNT",
		"EXAMGEN_GENERATION_MAX_COUNT",
		"EXAMGEN_GENERATION_TEMPERATURE",
		"EXAMGEN_GENERATION_TOPIC_RULES",
		"EXAMGEN_GENERATION_STRICT",
		"EXAMGEN_LOG_LEVEL",
		"EXAMGEN_LOG_FORMAT",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty (persistence disabled by default)", cfg.Database.URL)
	}
	if cfg.Cache.SessionTTL != 24 {
		t.Errorf("Cache.SessionTTL = %d, want 24", cfg.Cache.SessionTTL)
	}
	if cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Errorf("AI.OpenAI.Model = %q, want gpt-4o", cfg.AI.OpenAI.Model)
	}
	if cfg.Generation.DefaultCount != 5 {
		t.Errorf("Generation.DefaultCount = %d, want 5", cfg.Generation.DefaultCount)
	}
	if cfg.Generation.MaxCount != 10 {
		t.Errorf("Generation.MaxCount = %d, want 10", cfg.Generation.MaxCount)
	}
	if cfg.Generation.Strict {
		t.Error("Generation.Strict = true, want false by default")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMGEN_SERVER_PORT", "9090")
	t.Setenv("EXAMGEN_AI_OPENAI_API_KEY", "sk-test")
	t.Setenv("EXAMGEN_GENERATION_DEFAULT_COUNT", "3")
	t.Setenv("EXAMGEN_GENERATION_STRICT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.AI.OpenAI.APIKey != "sk-test" {
		t.Errorf("AI.OpenAI.APIKey = %q, want sk-test", cfg.AI.OpenAI.APIKey)
	}
	if cfg.Generation.DefaultCount != 3 {
		t.Errorf("Generation.DefaultCount = %d, want 3", cfg.Generation.DefaultCount)
	}
	if !cfg.Generation.Strict {
		t.Error("Generation.Strict = false, want true")
	}
}

func TestValidate_NoProvider(t *testing.T) {
	clearEnv(t)

	cfg, _ := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail without any AI provider")
	}
}

func TestValidate_WithProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMGEN_AI_OPENAI_API_KEY", "sk-test")

	cfg, _ := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_BadCount(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMGEN_AI_OPENAI_API_KEY", "sk-test")
	t.Setenv("EXAMGEN_GENERATION_DEFAULT_COUNT", "50")

	cfg, _ := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when default count exceeds max count")
	}
}

func TestValidate_BadLogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXAMGEN_AI_OPENAI_API_KEY", "sk-test")
	t.Setenv("EXAMGEN_LOG_FORMAT", "xml")

	cfg, _ := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for unknown log format")
	}
}
