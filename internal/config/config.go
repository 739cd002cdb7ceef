package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm" validate:"required"`
	Store  StoreConfig  `mapstructure:"store" validate:"required"`
}

// ServerConfig contains HTTP server and logging settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a copy of every log line with size-based rotation.
	LogFile     string `mapstructure:"log_file"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" validate:"required,gt=0,lte=512"`
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	// APIKey is optional at load time. A missing key surfaces as a
	// missing-credential error on the first generation request.
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	Driver            string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
	DatabaseURL       string `mapstructure:"database_url" validate:"required_if=Driver postgres"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" validate:"required,gt=0"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// SessionTTL returns how long an idle in-memory session is kept.
func (c StoreConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
