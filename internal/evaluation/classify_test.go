package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a test double for TextGenerator
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Calls        int
	Prompts      []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	return m.GenerateFunc(ctx, prompt)
}

func TestClassify_ShortCircuit(t *testing.T) {
	originals := []string{
		"",
		"   \n\t",
		NoOriginalReadme,
		"  " + NoOriginalReadme + "\n",
		"# tiny",
		strings.Repeat("a", MinReadmeLength-1),
	}

	for _, original := range originals {
		gen := &MockGenerator{GenerateFunc: func(context.Context, string) (string, error) {
			t.Fatal("generator must not be called")
			return "", nil
		}}
		c := NewClassifier(gen, zerolog.Nop())

		a := c.Classify(context.Background(), original, "# Generated")
		assert.True(t, a.LowQuality, "original %q", original)
		assert.False(t, a.Evaluated)
		assert.Equal(t, RecommendOverwrite, a.Recommendation())
		assert.Equal(t, 0, gen.Calls)
	}
}

func TestClassify_ModelVerdict(t *testing.T) {
	original := "# Billing Service\n\nComputes invoices from usage events and exports them nightly."

	tests := []struct {
		name     string
		response string
		expected bool
	}{
		{"yes on last line", "The README is full of TODOs.\nYES", true},
		{"no on last line", "The README is specific and useful.\nNO", false},
		{"lowercase answer", "analysis\nyes", true},
		{"ambiguous last line with replacement phrase", "YES, it should be replaced.\nFinal answer: YES or NO?", true},
		{"ambiguous last line without phrase", "Maybe YES\nYES/NO", false},
		{"no verdict at all", "I cannot tell.", false},
		{"word containing NO is not a verdict", "Nothing notable.\nYES", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{GenerateFunc: func(context.Context, string) (string, error) {
				return tt.response, nil
			}}
			a := NewClassifier(gen, zerolog.Nop()).Classify(context.Background(), original, "# Generated")

			assert.Equal(t, tt.expected, a.LowQuality)
			assert.Equal(t, tt.response, a.Rationale)
			assert.True(t, a.Evaluated)
			assert.Equal(t, 1, gen.Calls)
		})
	}
}

func TestClassify_PromptEmbedsBothDocuments(t *testing.T) {
	gen := &MockGenerator{GenerateFunc: func(context.Context, string) (string, error) { return "NO", nil }}
	c := NewClassifier(gen, zerolog.Nop())

	c.Classify(context.Background(), "# Original project readme with content", "# Generated readme body")
	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], "# Original project readme with content")
	assert.Contains(t, gen.Prompts[0], "# Generated readme body")
}

func TestClassify_FailsClosed(t *testing.T) {
	gen := &MockGenerator{GenerateFunc: func(context.Context, string) (string, error) {
		return "", errors.New("connection reset")
	}}

	a := NewClassifier(gen, zerolog.Nop()).Classify(context.Background(), "# A perfectly reasonable README body", "# Generated")
	assert.False(t, a.LowQuality)
	assert.Equal(t, RecommendRespectOriginal, a.Recommendation())
	assert.True(t, strings.HasPrefix(a.Rationale, "Error during evaluation: "))
	assert.Contains(t, a.Rationale, "connection reset")
}

func TestParseVerdict(t *testing.T) {
	assert.True(t, ParseVerdict("YES"))
	assert.False(t, ParseVerdict("NO"))
	assert.False(t, ParseVerdict(""))
	assert.True(t, ParseVerdict("Answer:\n  **YES**  \n"))
}

func TestIsTrivial(t *testing.T) {
	assert.True(t, IsTrivial(""))
	assert.True(t, IsTrivial(NoOriginalReadme))
	assert.False(t, IsTrivial("# Service\n\nDoes something useful for people."))
}
