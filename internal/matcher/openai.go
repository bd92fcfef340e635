package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/model"
)

// openAIClient implements the Client interface using the OpenAI chat
// completions API with JSON response format.
type openAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4o
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &openAIClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       m,
		temperature: temperature,
	}, nil
}

// Match implements Client.
func (c *openAIClient) Match(ctx context.Context, doc *model.ProcessedDocument, rules []model.ClassificationRule) (model.ClassificationResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(doc, rules),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return model.ClassificationResult{}, fmt.Errorf("%w: no completion choices returned", common.ErrMatcherSchema)
	}

	return parseResult(resp.Choices[0].Message.Content)
}

// parseResult decodes the model output into a ClassificationResult. A
// response that cannot be decoded is a schema error, never repaired; the
// raw content is logged for diagnosis.
func parseResult(content string) (model.ClassificationResult, error) {
	cleaned := stripMarkdownFences(content)

	var result model.ClassificationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		slog.Error("failed to parse matcher response",
			"error", err,
			"raw_response", content)
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrMatcherSchema, err)
	}

	if result.MatchedRules == nil {
		result.MatchedRules = []model.MatchedRule{}
	}
	if result.SuggestedCategories == nil {
		result.SuggestedCategories = []string{}
	}

	return result, nil
}

// stripMarkdownFences removes a ```json wrapper some models add despite the
// JSON response format.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
