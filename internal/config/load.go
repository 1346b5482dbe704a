package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "ICONS"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.task_ttl", 24*time.Hour)
	v.SetDefault("redis.dial_timeout", 3*time.Second)
	v.SetDefault("redis.key_prefix", "icons:task:")

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.timeout", 30*time.Minute)
	v.SetDefault("task.concept_concurrency", 1)
	v.SetDefault("task.default_max_concepts", 30)
	v.SetDefault("task.max_concepts_limit", 50)

	v.SetDefault("llm.concept_provider", "gemini")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.concept_model", "gemini-2.0-flash")
	v.SetDefault("llm.openai_model", "gpt-4-turbo-preview")
	v.SetDefault("llm.image_model", "imagen-3.0-generate-002")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.prompt_template_path", "")

	v.SetDefault("youtube.languages", []string{"fr", "en"})
	v.SetDefault("youtube.timeout", 30*time.Second)

	v.SetDefault("replicate.api_token", "")
	v.SetDefault("replicate.model_version", "59626141ca33e4fb7cf0fbba36a2629d29aa4a728e7268abf314e0d8e16e7c9e")
	v.SetDefault("replicate.base_url", "https://api.replicate.com")
	v.SetDefault("replicate.poll_interval", time.Second)

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("supabase.bucket", "icons")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.ping_timeout", 5*time.Second)
}

// bindEnvs makes every defaulted key visible to Unmarshal when it is only set
// through the environment.
func bindEnvs(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}
}
