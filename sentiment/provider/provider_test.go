package provider

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationSchema_IsStrict(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "object", classificationSchema["type"])
	assert.Equal(t, false, classificationSchema["additionalProperties"])

	props, ok := classificationSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "tweet")
	assert.Contains(t, props, "confidence_score")
	assert.Contains(t, props, "reasoning")

	req, ok := classificationSchema["required"].([]string)
	require.True(t, ok)
	sort.Strings(req)
	assert.Equal(t, []string{"confidence_score", "reasoning", "tweet"}, req)
}

func TestClassificationPrompt_Brand(t *testing.T) {
	t.Parallel()

	p := ClassificationPrompt("Acme")
	assert.Contains(t, p, "attitudes toward Acme")
	assert.Contains(t, p, "0.9 - 1.0: Extremely positive toward Acme")
	assert.Contains(t, p, `"confidence_score"`)
	assert.NotContains(t, p, "{{BRAND}}")
	assert.NotContains(t, p, "Nestle")

	assert.Contains(t, ClassificationPrompt("  "), "toward Nestle")
	assert.Equal(t, "Classify this tweet: hi", UserMessage("hi"))
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, isRateLimitError(errors.New("POST: 429 Too Many Requests")))
	assert.True(t, isRateLimitError(errors.New("Rate limit reached")))
	assert.False(t, isRateLimitError(nil))
	assert.True(t, isServerError(errors.New("500 Internal Server Error")))
	assert.True(t, isServerError(errors.New("503 service unavailable")))
	assert.False(t, isServerError(errors.New("400 bad request")))
}

func TestOpenAIParams(t *testing.T) {
	t.Parallel()

	c := NewOpenAIClassifier("k", "", "Acme")
	assert.Equal(t, DefaultOpenAIModel, c.Model)
	assert.Equal(t, DefaultMaxTokens, c.MaxTokens)

	p := c.params("some post")
	assert.Equal(t, DefaultOpenAIModel, string(p.Model))
	assert.Equal(t, int64(DefaultMaxTokens), p.MaxOutputTokens.Value)
	assert.Equal(t, 0.0, p.Temperature.Value)
	assert.True(t, strings.Contains(p.Instructions.Value, "toward Acme"))
	require.Len(t, p.Input.OfInputItemList, 1)

	c.MaxTokens = 4
	assert.Equal(t, int64(minOutputTokens), c.params("x").MaxOutputTokens.Value)
}

func TestAnthropicParams(t *testing.T) {
	t.Parallel()

	c := NewAnthropicClassifier("k", "", "Acme")
	p := c.params("some post")
	assert.Equal(t, DefaultAnthropicModel, string(p.Model))
	assert.Equal(t, int64(DefaultMaxTokens), p.MaxTokens)
	require.Len(t, p.System, 1)
	assert.Contains(t, p.System[0].Text, "toward Acme")
	require.Len(t, p.Messages, 1)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Provider: OpenAI})
	assert.Error(t, err, "missing key")

	_, err = New(Options{Provider: "mistral", APIKey: "k"})
	assert.Error(t, err)

	f, err := New(Options{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, f)

	f, err = New(Options{Provider: Anthropic, APIKey: "k", MaxTokens: 300})
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestClassify_NilClient(t *testing.T) {
	t.Parallel()

	_, err := (&OpenAIClassifier{Model: "m"}).Classify(context.Background(), "x")
	assert.Error(t, err)
	_, err = (&AnthropicClassifier{}).Classify(context.Background(), "x")
	assert.Error(t, err)
}
