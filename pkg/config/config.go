// Package config loads glimpse settings from a TOML file and GLIMPSE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/papercomputeco/glimpse/pkg/provider"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

// Config is the complete glimpse configuration. Credentials are deliberately
// absent: they are supplied by the user with each analysis.
type Config struct {
	Server struct {
		// Address to listen on (e.g., ":8080")
		ListenAddr string `toml:"listen" env:"LISTEN"`

		// MaxUploadBytes bounds the size of an uploaded image.
		MaxUploadBytes int `toml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	} `toml:"server"`

	Provider struct {
		// Name is "openai" or "anthropic".
		Name string `toml:"name" env:"PROVIDER"`

		// BaseURL overrides the provider endpoint, e.g. an OpenAI-compatible gateway.
		BaseURL string `toml:"base_url" env:"BASE_URL"`

		Model     string        `toml:"model" env:"MODEL"`
		MaxTokens int           `toml:"max_tokens" env:"MAX_TOKENS"`
		Timeout   time.Duration `toml:"timeout" env:"TIMEOUT"`
	} `toml:"provider"`

	Prompt struct {
		Instruction string `toml:"instruction" env:"INSTRUCTION"`
		Separator   string `toml:"separator" env:"CONTEXT_SEPARATOR"`
	} `toml:"prompt"`

	Logging struct {
		Debug bool `toml:"debug" env:"DEBUG"`
	} `toml:"logging"`
}

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GLIMPSE_"

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.ListenAddr = ":8080"
	cfg.Server.MaxUploadBytes = 20 << 20
	cfg.Provider.Name = provider.OpenAI
	cfg.Provider.MaxTokens = provider.DefaultMaxTokens
	cfg.Provider.Timeout = 2 * time.Minute
	cfg.Prompt.Instruction = vision.DefaultInstruction
	cfg.Prompt.Separator = vision.DefaultContextSeparator
	return cfg
}

// Load builds a Config from the defaults, then path (if non-empty), then
// the environment. An empty path falls back to the first existing file of
// SearchPaths.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the config file locations tried when no path is given.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "glimpse", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "glimpse", "config.toml"),
			filepath.Join(home, ".glimpse", "config.toml"),
		)
	}
	return paths
}

func findConfigFile() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider.Name {
	case provider.OpenAI, provider.Anthropic:
	default:
		errs = append(errs, fmt.Errorf("provider.name: unsupported provider %q", c.Provider.Name))
	}
	if c.Provider.MaxTokens <= 0 {
		errs = append(errs, errors.New("provider.max_tokens must be positive"))
	}
	if c.Provider.Timeout < 0 {
		errs = append(errs, errors.New("provider.timeout must not be negative"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Prompt.Instruction == "" {
		errs = append(errs, errors.New("prompt.instruction must not be empty"))
	}
	return errors.Join(errs...)
}

// ProviderOptions maps the provider section onto provider.Options.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		Provider:  c.Provider.Name,
		BaseURL:   c.Provider.BaseURL,
		Model:     c.Provider.Model,
		MaxTokens: c.Provider.MaxTokens,
	}
}
