package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultMaxTokens   = 150

	// minOutputTokens is the smallest max_output_tokens the Responses API accepts.
	minOutputTokens = 16
)

// classificationResponse is the shape the model is asked to return.
type classificationResponse struct {
	Tweet           string  `json:"tweet" jsonschema:"required,description=The original post text"`
	ConfidenceScore float64 `json:"confidence_score" jsonschema:"required,description=0 is most negative toward the brand and 1 most positive"`
	Reasoning       string  `json:"reasoning" jsonschema:"required,description=Why this score was assigned"`
}

var classificationSchema = GenerateSchema[classificationResponse]()

// OpenAIClassifier scores posts with the Responses API using a strict JSON schema.
type OpenAIClassifier struct {
	client      *openai.Client
	Model       string
	Brand       string
	Temperature float64
	MaxTokens   int

	// Retry controls whether 429/5xx responses are retried with backoff.
	Retry bool
}

func NewOpenAIClassifier(apiKey, model, brand string) *OpenAIClassifier {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClassifier{
		client:    &client,
		Model:     model,
		Brand:     brand,
		MaxTokens: DefaultMaxTokens,
		Retry:     true,
	}
}

func (c *OpenAIClassifier) params(text string) responses.ResponseNewParams {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxTokens = max(maxTokens, minOutputTokens)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "PostSentiment",
			Schema:      classificationSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Brand sentiment classification JSON"),
			Type:        "json_schema",
		},
	}
	return responses.ResponseNewParams{
		Model:           c.Model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Temperature:     openai.Float(c.Temperature),
		Instructions:    openai.String(ClassificationPrompt(c.Brand)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(UserMessage(text), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
}

// Classify returns the model's raw output text for one post. It matches sentiment.ClassifyFunc.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("OpenAIClassifier.Classify: client is nil")
	}
	if c.Model == "" {
		return "", errors.New("OpenAIClassifier.Classify: model is empty")
	}

	params := c.params(text)
	var (
		resp *responses.Response
		err  error
	)
	if c.Retry {
		resp, err = CallWithRetry(ctx, c.client, params)
	} else {
		resp, err = c.client.Responses.New(ctx, params)
	}
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	return resp.OutputText(), nil
}

// CallWithRetry retries rate-limited and server-failed calls a bounded number of times.
func CallWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = rateLimitWaitTimes[attempt]
		case isServerError(err):
			wait = serverErrorWaitTimes[attempt]
		default:
			return nil, err
		}
		if attempt == maxRetries-1 {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// GenerateSchema reflects T into a strict-mode JSON schema map.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schemaObj, err := schemaToMap(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}
	ensureStrictObjects(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureStrictObjects closes every object and marks all of its properties required, which
// strict structured output demands.
func ensureStrictObjects(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrictObjects(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrictObjects(items)
	}
}
