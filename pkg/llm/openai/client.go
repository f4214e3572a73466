package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/user/reviewbot/pkg/llm"
)

// Dialect selects provider-specific request fields.
type Dialect string

const (
	// DialectOpenAI sends a plain chat completions body.
	DialectOpenAI Dialect = "openai"
	// DialectGLM adds the sampling and thinking fields Zhipu's GLM API expects.
	DialectGLM Dialect = "glm"
)

// Client implements llm.Completer for OpenAI-compatible chat completions APIs.
type Client struct {
	config     *llm.Config
	dialect    Dialect
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithDialect sets the request dialect. The default is DialectOpenAI.
func WithDialect(d Dialect) Option {
	return func(c *Client) { c.dialect = d }
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new OpenAI-compatible client with the given configuration.
func New(config *llm.Config, opts ...Option) *Client {
	c := &Client{
		config:  config,
		dialect: DialectOpenAI,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = llm.NewHTTPClient(slog.Default(), 0)
	}
	return c
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Stream         bool            `json:"stream"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float32        `json:"temperature,omitempty"`
	TopP           *float32        `json:"top_p,omitempty"`
	Thinking       *thinking       `json:"thinking,omitempty"`
	DoSample       *bool           `json:"do_sample,omitempty"`
	ToolStream     *bool           `json:"tool_stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type thinking struct {
	Type string `json:"type"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func (c *Client) buildRequest(messages []llm.Message) chatRequest {
	req := chatRequest{
		Model:    c.config.Model,
		Messages: messages,
	}

	if c.config.MaxTokens > 0 {
		req.MaxTokens = c.config.MaxTokens
	}
	if c.config.Temperature != 0 {
		temp := c.config.Temperature
		req.Temperature = &temp
	}
	if c.config.TopP != 0 {
		topP := c.config.TopP
		req.TopP = &topP
	}

	if c.dialect == DialectGLM {
		doSample, toolStream := true, false
		req.Thinking = &thinking{Type: "enabled"}
		req.DoSample = &doSample
		req.ToolStream = &toolStream
		req.ResponseFormat = &responseFormat{Type: "text"}
		if req.Temperature == nil {
			temp := float32(1)
			req.Temperature = &temp
		}
		if req.TopP == nil {
			topP := float32(0.95)
			req.TopP = &topP
		}
	}
	return req
}

// Complete sends the full transcript as a chat completion request and
// returns the reply text.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	body, err := json.Marshal(c.buildRequest(messages))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	text, err := ExtractText(respBody)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(respBody)
	return &llm.Response{
		Text: text,
		Usage: llm.Usage{
			InputTokens:  int(parsed.Get("usage.prompt_tokens").Int()),
			OutputTokens: int(parsed.Get("usage.completion_tokens").Int()),
			TotalTokens:  int(parsed.Get("usage.total_tokens").Int()),
		},
	}, nil
}

// ExtractText pulls the reply text out of a response body. It accepts, in
// order, a choice list, a top-level text field, or a bare JSON string.
func ExtractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: %s", llm.ErrResponseFormat, truncate(body))
	}

	parsed := gjson.ParseBytes(body)
	if content := parsed.Get("choices.0.message.content"); content.Type == gjson.String && content.Str != "" {
		return content.Str, nil
	}
	if text := parsed.Get("text"); text.Type == gjson.String && text.Str != "" {
		return text.Str, nil
	}
	if parsed.Type == gjson.String {
		return parsed.Str, nil
	}
	return "", fmt.Errorf("%w: %s", llm.ErrResponseFormat, truncate(body))
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
