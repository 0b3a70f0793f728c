package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastroguide/internal/anthropic"
	"gastroguide/internal/mealplan"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Port      int             `mapstructure:"port"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Log       LogConfig       `mapstructure:"log"`
}

type AnthropicConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Version     string        `mapstructure:"version"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ClientOptions maps the anthropic section onto client options.
func (a AnthropicConfig) ClientOptions() anthropic.Options {
	return anthropic.Options{
		APIKey:     a.APIKey,
		BaseURL:    a.BaseURL,
		Version:    a.Version,
		Timeout:    a.Timeout,
		MaxRetries: a.MaxRetries,
	}
}

// GeneratorSettings maps the anthropic section onto generation parameters.
func (a AnthropicConfig) GeneratorSettings() mealplan.Settings {
	return mealplan.Settings{
		Model:        a.Model,
		MaxTokens:    a.MaxTokens,
		Temperature:  a.Temperature,
		SystemPrompt: mealplan.SystemPrompt,
	}
}

// Load reads .env (if any), an optional config.yaml and the environment.
// Environment variables win; ANTHROPIC_API_KEY and PORT are read under their usual names.
func Load() (*Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		// Missing .env is normal outside local development.
		_ = godotenv.Load(f)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", anthropic.DefaultBaseURL)
	v.SetDefault("anthropic.version", anthropic.DefaultVersion)
	v.SetDefault("anthropic.model", mealplan.DefaultModel)
	v.SetDefault("anthropic.max_tokens", mealplan.DefaultMaxTokens)
	v.SetDefault("anthropic.temperature", mealplan.DefaultTemperature)
	v.SetDefault("anthropic.timeout", anthropic.DefaultTimeout)
	v.SetDefault("anthropic.max_retries", anthropic.DefaultMaxRetries)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("anthropic.max_tokens must be positive")
	}
	if cfg.Anthropic.Temperature < 0 || cfg.Anthropic.Temperature > 1 {
		return fmt.Errorf("anthropic.temperature must be within [0,1]")
	}
	if cfg.Anthropic.MaxRetries < 0 {
		return fmt.Errorf("anthropic.max_retries must not be negative")
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
