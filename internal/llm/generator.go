package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EmptyResponseError is returned when a provider answers with no usable text.
type EmptyResponseError struct {
	Model string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response from model %s", e.Model)
}

// TimeoutError is returned when a single generation call exceeds its deadline.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %s: %v", e.Timeout, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Generator turns a Client into a single-prompt text generator with a
// per-call deadline. A zero Timeout means the caller's context governs.
type Generator struct {
	Client  Client
	Tier    ModelTier
	Timeout time.Duration
}

// NewGenerator creates a Generator using the standard tier.
func NewGenerator(client Client, timeout time.Duration) *Generator {
	return &Generator{Client: client, Tier: TierStandard, Timeout: timeout}
}

// Generate sends one prompt and returns one response.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	text, err := g.Client.GenerateContent(ctx, prompt, g.Tier)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Timeout: g.Timeout, Cause: err}
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &EmptyResponseError{Model: g.Model()}
	}
	return text, nil
}

// Model returns the identifier of the model used by Generate.
func (g *Generator) Model() string {
	return g.Client.GetModel(g.Tier)
}
