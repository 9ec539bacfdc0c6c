// Package enhance rewrites raw activity descriptions into short task
// descriptions using a language model. A failed enhancement always
// falls back to the raw description.
package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"adofill/activity"
)

// DefaultSystemPrompt instructs the model when no custom prompt is
// configured.
const DefaultSystemPrompt = "You write software task descriptions. " +
	"Write one short paragraph (2-4 sentences) describing the activity. " +
	"Use formal language and mention the goal or impact when possible. " +
	"Do not repeat the title. Do not use bullet points or lists."

const defaultModel = "claude-sonnet-4-5"

// Enhancer produces a description for an activity.
type Enhancer interface {
	Enhance(ctx context.Context, a activity.Activity) (string, error)
}

// Noop keeps raw descriptions untouched.
type Noop struct{}

func (Noop) Enhance(ctx context.Context, a activity.Activity) (string, error) {
	return a.Description, nil
}

// Claude enhances descriptions through the Anthropic API.
type Claude struct {
	client       *anthropic.Client
	model        string
	systemPrompt string
}

func NewClaude(apiKey, model, systemPrompt string) *Claude {
	if model == "" {
		model = defaultModel
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Claude{client: &client, model: model, systemPrompt: systemPrompt}
}

func (c *Claude) Enhance(ctx context.Context, a activity.Activity) (string, error) {
	raw := a.Description
	if raw == "" {
		raw = "(no description)"
	}
	prompt := fmt.Sprintf("%s\n\n---\n\nSource: %s\nTitle: %s\nDate: %s\nHours: %gh\nRaw description: %s\n\nWrite the task description.",
		c.systemPrompt, a.Source, a.Title, a.Date, a.CompletedWork, raw)

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 300,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("enhance %q: %w", a.Title, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("enhance %q: empty model response", a.Title)
	}
	return text, nil
}
