// Package evaluation decides whether an existing README should be replaced by
// a generated one.
package evaluation

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/readme-generator/internal/prompts"
)

// NoOriginalReadme is the placeholder used when a repository has no README.
const NoOriginalReadme = "No original README found."

// MinReadmeLength is the trimmed length below which a README is treated as empty.
const MinReadmeLength = 20

const shortCircuitRationale = "README is empty or minimal"

// Recommendation tells the final step which document to build on.
type Recommendation string

const (
	// RecommendOverwrite replaces the original README with the generated one.
	RecommendOverwrite Recommendation = "OVERWRITE"
	// RecommendRespectOriginal keeps the original README as the base.
	RecommendRespectOriginal Recommendation = "RESPECT_ORIGINAL"
)

// TextGenerator produces one response for one prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assessment is the outcome of evaluating an original README.
type Assessment struct {
	LowQuality bool
	Rationale  string
	// Evaluated is true when the model was consulted.
	Evaluated bool
}

// Recommendation maps the assessment onto the final step's instruction.
func (a Assessment) Recommendation() Recommendation {
	if a.LowQuality {
		return RecommendOverwrite
	}
	return RecommendRespectOriginal
}

// Classifier judges README quality with one blocking model call.
type Classifier struct {
	generator TextGenerator
	logger    zerolog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(generator TextGenerator, logger zerolog.Logger) *Classifier {
	return &Classifier{generator: generator, logger: logger}
}

// Classify evaluates original against generated. Empty, placeholder or very
// short originals are low quality without consulting the model. Any failure
// keeps the original: LowQuality is false and the rationale carries the error.
func (c *Classifier) Classify(ctx context.Context, original, generated string) Assessment {
	if IsTrivial(original) {
		return Assessment{LowQuality: true, Rationale: shortCircuitRationale}
	}

	prompt, err := prompts.Render(prompts.EvaluationFile, prompts.KeyReadmeQuality, struct {
		Original  string
		Generated string
	}{Original: original, Generated: generated})
	if err != nil {
		return c.failClosed(&EvaluationError{Message: "failed to build evaluation prompt", Cause: err})
	}

	response, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return c.failClosed(&EvaluationError{Message: "failed to generate content from LLM", Cause: err})
	}

	lowQuality := ParseVerdict(response)
	c.logger.Debug().Bool("low_quality", lowQuality).Msg("README evaluated")
	return Assessment{LowQuality: lowQuality, Rationale: response, Evaluated: true}
}

func (c *Classifier) failClosed(err error) Assessment {
	c.logger.Error().Err(err).Msg("README evaluation failed, keeping original")
	return Assessment{LowQuality: false, Rationale: err.Error(), Evaluated: true}
}

// IsTrivial reports whether a README carries no content worth preserving.
func IsTrivial(readme string) bool {
	trimmed := strings.TrimSpace(readme)
	return trimmed == "" || trimmed == NoOriginalReadme || len([]rune(trimmed)) < MinReadmeLength
}

var (
	yesWord = regexp.MustCompile(`\bYES\b`)
	noWord  = regexp.MustCompile(`\bNO\b`)
)

// ParseVerdict reads the model's YES/NO answer from the last line. When the
// last line is ambiguous the whole response must both say YES and state that
// the README should be replaced.
func ParseVerdict(response string) bool {
	trimmed := strings.TrimSpace(response)
	lines := strings.Split(trimmed, "\n")
	finalLine := strings.ToUpper(strings.TrimSpace(lines[len(lines)-1]))

	hasYes := yesWord.MatchString(finalLine)
	hasNo := noWord.MatchString(finalLine)
	switch {
	case hasYes && !hasNo:
		return true
	case hasNo && !hasYes:
		return false
	}

	upper := strings.ToUpper(trimmed)
	return yesWord.MatchString(upper) && strings.Contains(upper, "SHOULD BE REPLACED")
}
