package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Redis       RedisConfig       `mapstructure:"redis"`
	API         APIConfig         `mapstructure:"api"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" validate:"min=1,max=65535"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"min=1"`
}

type RedisConfig struct {
	URL            string `mapstructure:"url" validate:"required"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBackoffMS int    `mapstructure:"retry_backoff_ms"`
	PoolSize       int    `mapstructure:"pool_size"`
	MinIdleConns   int    `mapstructure:"min_idle_conns"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type StorageConfig struct {
	// Path of the preference cache file; empty keeps the cache in memory.
	Path string `mapstructure:"path"`
}

type PreferencesConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" validate:"min=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

func (p PreferencesConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMS) * time.Millisecond
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("notifier")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("preferences.debounce_ms", 1000)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
