package server

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig controls the permissive CORS headers attached to every response.
type CORSConfig struct {
	AllowOrigin string `mapstructure:"allow_origin"`
}

// RateLimitConfig bounds per-IP request rates.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// DefaultConfig mirrors the defaults registered by LoadConfig.
func DefaultConfig() Config {
	return Config{
		Host:      "0.0.0.0",
		Port:      3000,
		CORS:      CORSConfig{AllowOrigin: "*"},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
	}
}

// LoadConfig reads configuration from an optional .env file, an optional
// YAML file, and environment variables (GOVIFY_ prefix).
//
// PINECONE_API_KEY and PINECONE_HOST are honored as fallbacks for
// assistant.api_key and assistant.base_url so existing deployments keep
// working.
func LoadConfig(configPath, envFile string) (*viper.Viper, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors.allow_origin", "*")
	v.SetDefault("server.rate_limit.rps", 20)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("assistant.base_url", "https://prod-1-data.ke.pinecone.io")
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.name", "phoenixville")
	v.SetDefault("assistant.timeout", "10s")
	v.SetDefault("interactions.enabled", false)
	v.SetDefault("interactions.path", "./data/govify.db")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("govify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/govify")
	}

	// GOVIFY_SERVER_PORT=9090, GOVIFY_ASSISTANT_API_KEY=...
	v.SetEnvPrefix("GOVIFY")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindEnv("assistant.api_key", "GOVIFY_ASSISTANT_API_KEY", "PINECONE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind assistant.api_key: %w", err)
	}
	if err := v.BindEnv("assistant.base_url", "GOVIFY_ASSISTANT_BASE_URL", "PINECONE_HOST"); err != nil {
		return nil, fmt.Errorf("bind assistant.base_url: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}

// loadDotEnv loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing default .env is not
// an error; a missing explicitly named file is.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %q: %w", path, err)
	}
	return nil
}
