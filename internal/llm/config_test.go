package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderAnthropic, config.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", config.GetModel(TierStandard))
	assert.Equal(t, int64(DefaultMaxTokens), config.MaxTokens)
}

func TestDefaultGeminiConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.MaxTokens, newConfig.MaxTokens)
}

func TestProviderForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected Provider
		ok       bool
	}{
		{"us.anthropic.claude-3-5-sonnet-20241022-v2:0", ProviderAnthropic, true},
		{"claude-3-5-sonnet-latest", ProviderAnthropic, true},
		{"gpt-4o", ProviderOpenAI, true},
		{"o3-mini", ProviderOpenAI, true},
		{"gemini-2.5-flash", ProviderGemini, true},
		{"llama-3", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, ok := ProviderForModel(tt.model)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestConfigForModel(t *testing.T) {
	config := ConfigForModel("", "gpt-4o")
	assert.Equal(t, ProviderOpenAI, config.Provider)
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.Equal(t, "gpt-4o", config.GetModel(tier))
	}

	explicit := ConfigForModel(ProviderGemini, "my-tuned-model")
	assert.Equal(t, ProviderGemini, explicit.Provider)
	assert.Equal(t, "my-tuned-model", explicit.GetModel(TierLite))

	unknown := ConfigForModel("", "")
	assert.Equal(t, ProviderAnthropic, unknown.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", unknown.GetModel(TierStandard))
}

func TestProviderConstants(t *testing.T) {
	assert.Equal(t, Provider("gemini"), ProviderGemini)
	assert.Equal(t, Provider("openai"), ProviderOpenAI)
	assert.Equal(t, Provider("anthropic"), ProviderAnthropic)
}
