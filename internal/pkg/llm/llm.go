package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 12 * time.Second

// ErrEmptyCompletion is returned when a backend answers without any text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Generator is a text-generation capability. Implementations must honour ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pinger is implemented by generators that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelLister is implemented by backends serving several local models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// HasModel reports whether model is among models. A bare name also
// matches its ":latest" tag.
func HasModel(models []string, model string) bool {
	for _, m := range models {
		if m == model || m == model+":latest" {
			return true
		}
	}
	return false
}

// Options tunes a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultOptions returns the low temperature settings used for query rewriting.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   50,
		Temperature: 0.3,
		TopP:        0.9,
	}
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
