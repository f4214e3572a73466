// Package anthropic implements llm.Completer over the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/user/reviewbot/pkg/llm"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Client wraps the Anthropic SDK. The SDK's own retries are disabled; the
// bot's retry policy owns retrying.
type Client struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float32
}

// New creates a Client from config. An empty model selects a default.
func New(config *llm.Config, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	opts = append(opts, extra...)

	model := config.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := int64(config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	c := anthropic.NewClient(opts...)
	return &Client{
		client:      &c,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
	}
}

// Complete sends the transcript; a leading system turn becomes the
// request's system prompt.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
	}
	if c.temperature != 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			params.System = []anthropic.TextBlockParam{{Text: m.Content}}
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("anthropic messages: %w", llm.ErrEmptyReply)
	}

	return &llm.Response{
		Text: out.String(),
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}
