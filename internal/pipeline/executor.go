package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/readme-generator/internal/llm"
	"github.com/jonathan/readme-generator/internal/output"
	"github.com/jonathan/readme-generator/internal/pipeline/steps"
	"github.com/jonathan/readme-generator/internal/rendering"
	"github.com/jonathan/readme-generator/internal/types"
)

// TextGenerator produces one response for one prompt. Implementations apply
// their own per-call timeout.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// errEmptyOutput marks a response with nothing left after post-processing.
var errEmptyOutput = errors.New("generator returned no usable content")

// Executor runs one step: build context, render the prompt, generate and persist.
type Executor struct {
	store         *output.Store
	builder       *Builder
	generator     TextGenerator
	intermediates *output.Intermediates
	logger        zerolog.Logger
}

// NewExecutor creates an Executor. intermediates may be nil.
func NewExecutor(store *output.Store, builder *Builder, generator TextGenerator, intermediates *output.Intermediates, logger zerolog.Logger) *Executor {
	return &Executor{
		store:         store,
		builder:       builder,
		generator:     generator,
		intermediates: intermediates,
		logger:        logger,
	}
}

// Execute runs step against repo. An unknown step yields *steps.InvalidStepError;
// any other failure is a *GenerationError and leaves the step's previous output untouched.
func (e *Executor) Execute(ctx context.Context, step int, repo *types.RepositoryContext) error {
	def, err := steps.Lookup(step)
	if err != nil {
		return err
	}
	log := e.logger.With().Int("step", step).Str("name", def.Name).Logger()
	fail := func(cause error) error {
		return &GenerationError{Step: step, Name: def.Name, Cause: cause}
	}

	if err := steps.ValidateDependencies(e.store, step); err != nil {
		var depErr *steps.DependencyError
		if !errors.As(err, &depErr) {
			return fail(err)
		}
		log.Warn().Ints("missing", depErr.MissingDependencies).Msg("Prior outputs missing, using defaults")
	}

	prior, err := e.store.PriorOutputs(step)
	if err != nil {
		return fail(err)
	}

	stepContext, err := e.builder.Build(ctx, step, repo, prior)
	if err != nil {
		return fail(err)
	}
	e.saveIntermediate(log, "context", e.intermediates.SaveStepContext(step, def.Name, stepContext))

	prompt, err := RenderPrompt(stepContext)
	if err != nil {
		return fail(err)
	}
	e.saveIntermediate(log, "prompt", e.intermediates.SavePrompt(step, def.Name, prompt))

	log.Debug().Int("prompt_chars", len(prompt)).Msg("Generating")
	response, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return fail(err)
	}
	e.saveIntermediate(log, "response", e.intermediates.SaveStepOutput(step, def.Name, response))

	content := rendering.NormalizeNewlines(response)
	var reasoning string
	if step == steps.Last() {
		content, reasoning = rendering.ExtractReasoning(content)
		content = strings.TrimSpace(llm.StripCodeFence(content))
	}
	if strings.TrimSpace(content) == "" {
		return fail(errEmptyOutput)
	}

	if step == steps.Last() {
		// reasoning.md always matches the latest final output, even when empty.
		if err := e.store.WriteReasoning(reasoning); err != nil {
			return fail(err)
		}
		if reasoning != "" {
			e.saveIntermediate(log, "reasoning", e.intermediates.SaveReasoning(reasoning))
		}
	}

	if err := e.store.Write(step, content); err != nil {
		return fail(err)
	}
	log.Info().Int("chars", len(content)).Msg("Step output saved")
	return nil
}

func (e *Executor) saveIntermediate(log zerolog.Logger, what string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("artifact", what).Msg("Failed to save intermediate")
	}
}
