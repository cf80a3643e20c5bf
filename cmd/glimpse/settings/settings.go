// Package settings resolves the configuration shared by every glimpse
// subcommand: config file, environment, then flags.
package settings

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/glimpse/pkg/config"
	"github.com/papercomputeco/glimpse/pkg/provider"
)

// Flags holds the overrides registered on a command.
type Flags struct {
	cmd *cobra.Command

	configPath string
	provider   string
	model      string
	baseURL    string
	maxTokens  int
	debug      bool
}

// Register adds the shared flags to cmd.
func Register(cmd *cobra.Command) *Flags {
	f := &Flags{cmd: cmd}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: openai or anthropic")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name (default depends on provider)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Override the provider API base URL")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "Maximum length of the description in tokens")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Enable debug logging")

	return f
}

// Resolve loads the configuration and applies any flags the user set.
func (f *Flags) Resolve() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := f.cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider.Name = f.provider
	}
	if flags.Changed("model") {
		cfg.Provider.Model = f.model
	}
	if flags.Changed("base-url") {
		cfg.Provider.BaseURL = f.baseURL
	}
	if flags.Changed("max-tokens") {
		cfg.Provider.MaxTokens = f.maxTokens
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = f.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = provider.DefaultModel(cfg.Provider.Name)
	}
	return cfg, nil
}

// CredentialEnv names the environment variable conventionally holding the
// provider's API key.
func CredentialEnv(providerName string) string {
	switch providerName {
	case provider.Anthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Credential returns explicit if set, otherwise the provider's environment
// variable. The value is handed to each call and never stored globally.
func Credential(explicit, providerName string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return strings.TrimSpace(os.Getenv(CredentialEnv(providerName)))
}
