// Package responses implements a session-aware llm.Client over the OpenAI
// Responses API, where the server retains conversation state and the
// caller replays the returned identifiers.
package responses

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

// Client implements llm.Client with server-side sessions.
type Client struct {
	config     *llm.Config
	httpClient *http.Client
}

// New creates a Responses API client.
func New(config *llm.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = llm.NewHTTPClient(slog.Default(), 0)
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// SupportsSessions always returns true.
func (c *Client) SupportsSessions() bool {
	return true
}

type request struct {
	Model              string   `json:"model"`
	Input              string   `json:"input"`
	Instructions       string   `json:"instructions,omitempty"`
	PreviousResponseID string   `json:"previous_response_id,omitempty"`
	Conversation       string   `json:"conversation,omitempty"`
	Store              bool     `json:"store"`
	MaxOutputTokens    int      `json:"max_output_tokens,omitempty"`
	Temperature        *float32 `json:"temperature,omitempty"`
}

// Send delivers message within the conversation identified by handle and
// returns the identifiers the service issued for the reply. The parent
// message id takes precedence over the session id when both are set.
func (c *Client) Send(ctx context.Context, message string, handle llm.SessionHandle, opts llm.SendOptions) (*llm.Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	reqBody := request{
		Model:           c.config.Model,
		Input:           message,
		Instructions:    c.config.SystemMessage,
		Store:           true,
		MaxOutputTokens: c.config.MaxTokens,
	}
	if handle.ParentMessageID != "" {
		reqBody.PreviousResponseID = handle.ParentMessageID
	} else if handle.SessionID != "" {
		reqBody.Conversation = handle.SessionID
	}
	if c.config.Temperature != 0 {
		temp := c.config.Temperature
		reqBody.Temperature = &temp
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/responses"
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

	return parseResponse(respBody)
}

func parseResponse(body []byte) (*llm.Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", llm.ErrResponseFormat)
	}
	parsed := gjson.ParseBytes(body)

	text := outputText(parsed)
	if text == "" {
		return nil, fmt.Errorf("%w: no output text in response %s", llm.ErrResponseFormat, parsed.Get("id").Str)
	}

	conversation := parsed.Get("conversation.id").Str
	if conversation == "" {
		conversation = parsed.Get("conversation").Str
	}

	return &llm.Response{
		Text: text,
		Handle: llm.SessionHandle{
			SessionID:       conversation,
			ParentMessageID: parsed.Get("id").Str,
		},
		Usage: llm.Usage{
			InputTokens:  int(parsed.Get("usage.input_tokens").Int()),
			OutputTokens: int(parsed.Get("usage.output_tokens").Int()),
			TotalTokens:  int(parsed.Get("usage.total_tokens").Int()),
		},
	}, nil
}

// outputText concatenates every output_text part of every message item.
// Some compatible servers also send a top-level output_text convenience
// field, which is used when no message items are present.
func outputText(parsed gjson.Result) string {
	var out strings.Builder
	parsed.Get("output").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").Str != "message" {
			return true
		}
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").Str == "output_text" {
				out.WriteString(part.Get("text").Str)
			}
			return true
		})
		return true
	})
	if out.Len() > 0 {
		return out.String()
	}
	return parsed.Get("output_text").Str
}
