package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	YouTube   YouTubeConfig   `mapstructure:"youtube" validate:"required"`
	Replicate ReplicateConfig `mapstructure:"replicate"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RedisConfig configures the primary task backend.
// An empty URL runs the task store on the in-process backend only.
type RedisConfig struct {
	URL         string        `mapstructure:"url" validate:"omitempty,url"`
	TaskTTL     time.Duration `mapstructure:"task_ttl" validate:"gt=0"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"gt=0"`
	KeyPrefix   string        `mapstructure:"key_prefix" validate:"required"`
}

// TaskConfig controls the background task runner and the generation pipeline.
type TaskConfig struct {
	WorkerCount        int           `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize          int           `mapstructure:"queue_size" validate:"gte=1"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gt=0"`
	ConceptConcurrency int           `mapstructure:"concept_concurrency" validate:"gte=1,lte=16"`
	DefaultMaxConcepts int           `mapstructure:"default_max_concepts" validate:"gte=1,ltefield=MaxConceptsLimit"`
	MaxConceptsLimit   int           `mapstructure:"max_concepts_limit" validate:"gte=1"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	ConceptProvider    string `mapstructure:"concept_provider" validate:"required,oneof=gemini openai"`
	// GeminiAPIKey is required by image generation whatever the concept provider.
	GeminiAPIKey       string `mapstructure:"gemini_api_key" validate:"required"`
	OpenAIAPIKey       string `mapstructure:"openai_api_key" validate:"required_if=ConceptProvider openai"`
	ConceptModel       string `mapstructure:"concept_model" validate:"required"`
	OpenAIModel        string `mapstructure:"openai_model" validate:"required"`
	ImageModel         string `mapstructure:"image_model" validate:"required"`
	MaxRetries         int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}

// YouTubeConfig configures transcript acquisition.
type YouTubeConfig struct {
	Languages []string      `mapstructure:"languages" validate:"required,min=1,dive,required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ReplicateConfig configures background removal. An empty token disables it.
type ReplicateConfig struct {
	APIToken     string        `mapstructure:"api_token"`
	ModelVersion string        `mapstructure:"model_version" validate:"required"`
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

// SupabaseConfig configures object storage for generated icons.
// Storage is disabled unless both URL and ServiceKey are set.
type SupabaseConfig struct {
	URL        string `mapstructure:"url" validate:"omitempty,url"`
	ServiceKey string `mapstructure:"service_key"`
	Bucket     string `mapstructure:"bucket" validate:"required"`
}

// DatabaseConfig configures the icon catalog. An empty URL disables it.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout" validate:"gt=0"`
}

// Enabled reports whether background removal is configured.
func (c ReplicateConfig) Enabled() bool {
	return c.APIToken != ""
}

// Enabled reports whether object storage is configured.
func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.ServiceKey != ""
}
