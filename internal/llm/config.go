// Package llm provides centralized LLM configuration and client abstractions.
// Every provider is reached through the same Client interface so the README
// pipeline can switch between Claude, GPT and Gemini models by identifier alone.
package llm

import "strings"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short verdicts
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: purpose and usage analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: drafting and merging documents
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// DefaultMaxTokens caps the size of a single generated response.
const DefaultMaxTokens = 8192

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns the default configuration (Claude)
func DefaultConfig() *Config {
	return DefaultAnthropicConfig()
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-3-5-sonnet-latest",
			TierAdvanced: "claude-3-5-sonnet-latest",
		},
		MaxTokens: DefaultMaxTokens,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o",
			TierAdvanced: "gpt-4o",
		},
		MaxTokens: DefaultMaxTokens,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxTokens: DefaultMaxTokens,
	}
}

// ProviderForModel infers the provider from a model identifier. Identifiers
// such as "us.anthropic.claude-3-5-sonnet-20241022-v2:0" resolve to Anthropic.
func ProviderForModel(model string) (Provider, bool) {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case m == "":
		return "", false
	case strings.Contains(m, "claude"), strings.Contains(m, "anthropic"):
		return ProviderAnthropic, true
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return ProviderOpenAI, true
	case strings.Contains(m, "gemini"):
		return ProviderGemini, true
	}
	return "", false
}

// ConfigForModel builds a configuration that uses one model for every tier.
// An empty provider is inferred from the model; unknown models fall back to Anthropic.
func ConfigForModel(provider Provider, model string) *Config {
	if provider == "" {
		if p, ok := ProviderForModel(model); ok {
			provider = p
		} else {
			provider = ProviderAnthropic
		}
	}

	var base *Config
	switch provider {
	case ProviderOpenAI:
		base = DefaultOpenAIConfig()
	case ProviderGemini:
		base = DefaultGeminiConfig()
	default:
		base = DefaultAnthropicConfig()
	}
	if model == "" {
		return base
	}
	for tier := range base.Models {
		base.Models[tier] = model
	}
	return base
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

func (c *Config) maxTokens() int64 {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
