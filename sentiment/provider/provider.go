package provider

import (
	"context"
	"fmt"
	"strings"
)

const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
)

// Options selects and configures a classification backend.
type Options struct {
	Provider    string
	APIKey      string
	Model       string
	Brand       string
	Temperature float64
	MaxTokens   int
}

// New returns the Classify function of the configured backend.
func New(opts Options) (func(ctx context.Context, text string) (string, error), error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("provider.New: missing API key for %q", opts.Provider)
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", OpenAI:
		c := NewOpenAIClassifier(opts.APIKey, opts.Model, opts.Brand)
		c.Temperature = opts.Temperature
		if opts.MaxTokens > 0 {
			c.MaxTokens = opts.MaxTokens
		}
		return c.Classify, nil
	case Anthropic:
		c := NewAnthropicClassifier(opts.APIKey, opts.Model, opts.Brand)
		c.Temperature = opts.Temperature
		if opts.MaxTokens > 0 {
			c.MaxTokens = opts.MaxTokens
		}
		return c.Classify, nil
	default:
		return nil, fmt.Errorf("provider.New: unknown provider %q (want %s or %s)", opts.Provider, OpenAI, Anthropic)
	}
}
