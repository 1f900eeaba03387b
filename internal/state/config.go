package state

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm/provider"
	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Provider is the name of the text generation provider.
	Provider string `yaml:"provider" env:"LYREBIRD_PROVIDER"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty" env:"LYREBIRD_MODEL"`
	// APIKey is the provider credential used when the user doesn't supply one.
	APIKey string `yaml:"apiKey,omitempty" env:"LYREBIRD_API_KEY"`
	// BaseURL overrides the provider's API base URL.
	BaseURL   string `yaml:"baseUrl,omitempty" env:"LYREBIRD_BASE_URL"`
	OllamaURL string `yaml:"ollamaUrl,omitempty" env:"OLLAMA_HOST"`

	// DemoMode responds with a fixed demo response when no credential is
	// available, instead of failing.
	DemoMode  bool          `yaml:"demoMode" env:"LYREBIRD_DEMO_MODE"`
	DemoDelay time.Duration `yaml:"demoDelay" env:"LYREBIRD_DEMO_DELAY"`

	// Timeout bounds a single provider call. Zero means no timeout other than
	// the transport's.
	Timeout time.Duration `yaml:"timeout" env:"LYREBIRD_TIMEOUT"`

	DiscordBotToken string `yaml:"discordBotToken,omitempty" env:"DISCORD_BOT_TOKEN"`
	SentryDSN       string `yaml:"sentryDsn,omitempty" env:"SENTRY_DSN"`

	HTTP       *HTTPConfig       `yaml:"http,omitempty"`
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel" env:"LYREBIRD_LOG_LEVEL"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env:"LYREBIRD_HTTP_ADDRESS"`
}

type PrometheusConfig struct {
	Enabled bool `yaml:"enabled" env:"LYREBIRD_PROMETHEUS_ENABLED"`
}

// DefaultConfig returns the default config.
func DefaultConfig() *Config {
	return &Config{
		Provider: string(provider.Gemini),

		DemoMode:  true,
		DemoDelay: 2 * time.Second,

		HTTP: &HTTPConfig{
			Address: ":8080",
		},

		Prometheus: &PrometheusConfig{
			Enabled: false,
		},

		LogLevel: "info",
	}
}

// PopulateFromEnvironment populates the config with values from environment
// variables.
func (c *Config) PopulateFromEnvironment() error {
	if c.HTTP == nil {
		c.HTTP = &HTTPConfig{}
	}
	if c.Prometheus == nil {
		c.Prometheus = &PrometheusConfig{}
	}
	return env.Parse(c)
}

// Validate validates the config.
func (c *Config) Validate() error {
	if _, err := provider.ParseName(c.Provider); err != nil {
		return err
	}

	if c.OllamaURL != "" {
		if _, err := url.Parse(c.OllamaURL); err != nil {
			return fmt.Errorf("invalid ollama url: %w", err)
		}
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Timeout < 0 || c.DemoDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// Factory returns a provider factory for the config.
func (c *Config) Factory() (*provider.Factory, error) {
	factory := &provider.Factory{
		Model:     c.Model,
		BaseURL:   c.BaseURL,
		DemoDelay: c.DemoDelay,
	}

	if c.OllamaURL != "" {
		u, err := url.Parse(c.OllamaURL)
		if err != nil {
			return nil, err
		}
		factory.OllamaURL = u
	}

	return factory, nil
}

// CreateConfigIfNotExists makes sure that a config file exists. If it doesn't,
// it is created and populated with the default config.
func CreateConfigIfNotExists(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	config := DefaultConfig()
	return config.Store(path)
}

// ReadConfig reads a config file from the specified path.
func ReadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfig reads the config file at path if it exists, creating it with
// defaults otherwise, and overlays environment variables. An empty path uses
// defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, err
		}

		if err := CreateConfigIfNotExists(path); err != nil {
			return nil, err
		}

		var err error
		config, err = ReadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.PopulateFromEnvironment(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Store stores the config in the specified path.
// Writes are atomic.
func (c *Config) Store(path string) (err error) {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	encoder := yaml.NewEncoder(file)
	if err = encoder.Encode(c); err != nil {
		return err
	}

	if err = file.Sync(); err != nil {
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), path)
}
