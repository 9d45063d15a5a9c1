package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicClassifier scores posts with the Messages API. The reply is free text expected to
// hold the JSON object described in the system prompt.
type AnthropicClassifier struct {
	client      *anthropic.Client
	Model       string
	Brand       string
	Temperature float64
	MaxTokens   int
}

func NewAnthropicClassifier(apiKey, model, brand string) *AnthropicClassifier {
	client := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClassifier{client: &client, Model: model, Brand: brand, MaxTokens: DefaultMaxTokens}
}

func (c *AnthropicClassifier) params(text string) anthropic.MessageNewParams {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(c.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(c.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: ClassificationPrompt(c.Brand), CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(UserMessage(text))),
		},
	}
}

// Classify returns the first text block of the reply. It matches sentiment.ClassifyFunc.
func (c *AnthropicClassifier) Classify(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("AnthropicClassifier.Classify: client is nil")
	}
	message, err := c.client.Messages.New(ctx, c.params(text))
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("no text content in Anthropic response")
}
