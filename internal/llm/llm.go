package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/wikiquiz/internal/llm/prompts"
	"github.com/pavelanni/wikiquiz/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("LLM returned no choices")

// Generated is the part of a quiz payload produced by the model.
type Generated struct {
	Summary       string           `json:"summary"`
	KeyEntities   model.Entities   `json:"key_entities"`
	Quiz          []model.Question `json:"quiz"`
	RelatedTopics []string         `json:"related_topics"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api           *openai.Client
	model         string
	promptVariant prompts.PromptVariant
	minQuestions  int
	maxQuestions  int
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName, promptVariant string, minQuestions, maxQuestions int) (*Client, error) {
	if err := prompts.Load(prompts.Templates); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !prompts.IsValidVariant(promptVariant) {
		return nil, fmt.Errorf("invalid prompt variant %q", promptVariant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:           openai.NewClientWithConfig(config),
		model:         modelName,
		promptVariant: prompts.PromptVariant(promptVariant),
		minQuestions:  minQuestions,
		maxQuestions:  maxQuestions,
	}, nil
}

// Ping checks that the endpoint answers and knows the configured model.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			return nil
		}
	}
	slog.Warn("configured model not listed by endpoint", "model", c.model, "available", len(models.Models))
	return nil
}

// GenerateQuiz asks the model for a summary, key entities, questions, and
// related topics for the article text.
func (c *Client) GenerateQuiz(ctx context.Context, articleText string) (*Generated, error) {
	prompt, err := prompts.BuildGeneratePrompt(c.promptVariant, articleText, c.minQuestions, c.maxQuestions)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
		MaxTokens:   2048,
		TopP:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM response", "raw", raw)

	var gen Generated
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &gen); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	repairAnswers(gen.Quiz)
	return &gen, nil
}

// stripCodeFence removes a surrounding Markdown code block, if any.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// repairAnswers rewrites letter answers ("B", "Option C") into the option
// text they point at. Any other mismatch is left as is.
func repairAnswers(questions []model.Question) {
	for i := range questions {
		q := &questions[i]
		if q.HasOption(q.Answer) {
			continue
		}
		letter := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(q.Answer), "Option "))
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'D' {
			slog.Warn("answer not found in options", "answer", q.Answer, "options", q.Options)
			continue
		}
		idx := int(letter[0] - 'A')
		if idx < len(q.Options) {
			q.Answer = q.Options[idx]
		}
	}
}
