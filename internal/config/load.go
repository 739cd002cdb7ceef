package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ANKIGEN"

// Default models per provider, used when llm.model is not configured.
const (
	DefaultGeminiModel = "gemini-2.5-pro"
	DefaultOpenAIModel = "gpt-4o"
)

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and ANKIGEN_ environment variables, in increasing order of
// precedence. The API key additionally falls back to GEMINI_API_KEY and
// API_KEY.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.5)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.session_ttl_minutes", 120)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit names are not prefixed; the first one set wins.
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding api key variables: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Server.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Server.LogLevel))
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == "openai" {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}
