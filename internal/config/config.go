// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/schemas"
)

// Defaults applied before any file, environment or flag value.
const (
	DefaultModel       = "claude-3-5-sonnet-latest"
	DefaultTimeout     = 2 * time.Minute
	DefaultMaxFileSize = 100 * 1024
	DefaultLanguage    = "auto"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

// Environment variables read by ApplyEnv.
const (
	EnvModel           = "README_AGENT_MODEL"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

// Config is the merged readme_agent configuration. Files may be JSON or YAML
// and use the same keys.
type Config struct {
	Repo              string   `json:"repo,omitempty" yaml:"repo,omitempty"`
	OutputDir         string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Model             string   `json:"model,omitempty" yaml:"model,omitempty" validate:"required"`
	Provider          string   `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=anthropic openai gemini"`
	APIKey            string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL           string   `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Language          string   `json:"language,omitempty" yaml:"language,omitempty" validate:"oneof=auto java python javascript go"`
	LogLevel          string   `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"oneof=debug info warn warning error critical"`
	LogFormat         string   `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"oneof=console json"`
	KeepSteps         bool     `json:"keep_steps,omitempty" yaml:"keep_steps,omitempty"`
	SaveIntermediates bool     `json:"save_intermediates,omitempty" yaml:"save_intermediates,omitempty"`
	Force             bool     `json:"force,omitempty" yaml:"force,omitempty"`
	Timeout           Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gt=0"`
	DatabaseURL       string   `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	MaxFileSize       int64    `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty" validate:"gt=0"`
}

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		Model:       DefaultModel,
		Language:    DefaultLanguage,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Timeout:     Duration(DefaultTimeout),
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Load returns the defaults overlaid with the file at path, when one is
// given, and then with the environment. The API key is resolved separately.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(getenv)
	return cfg, nil
}

// LoadFile overlays the JSON or YAML file at path onto c. The document is
// checked against the configuration schema before decoding, so unknown keys
// and malformed values are reported with their field names.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := schemas.ValidateConfigJSON(data); err != nil {
			return fmt.Errorf("invalid config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
		if doc == nil {
			return nil
		}
		if err := schemas.ValidateConfig(doc); err != nil {
			return fmt.Errorf("invalid config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

// ApplyEnv overlays the model and database URL from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
}

// ResolveAPIKey fills an empty APIKey from the variable of the resolved
// provider. Call it after flags are applied, since --model can change the
// provider.
func (c *Config) ResolveAPIKey(getenv func(string) string) {
	if c.APIKey != "" {
		return
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	c.APIKey = getenv(APIKeyEnv(c.ResolvedProvider()))
}

// ResolvedProvider returns the configured provider, or the one inferred from
// the model. Unknown models resolve to Anthropic.
func (c *Config) ResolvedProvider() llm.Provider {
	if c.Provider != "" {
		return llm.Provider(c.Provider)
	}
	if p, ok := llm.ProviderForModel(c.Model); ok {
		return p
	}
	return llm.ProviderAnthropic
}

// APIKeyEnv names the environment variable holding the provider's API key.
func APIKeyEnv(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return EnvOpenAIAPIKey
	case llm.ProviderGemini:
		return EnvGeminiAPIKey
	default:
		return EnvAnthropicAPIKey
	}
}

// LLMConfig builds the client configuration for the configured model.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForModel(c.ResolvedProvider(), c.Model)
	cfg.BaseURL = c.BaseURL
	return cfg
}
