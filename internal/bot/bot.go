// Package bot is the conversation orchestrator the review pipeline talks to.
// It hides whether the backend keeps sessions server-side: for backends
// that do, the caller's handle is forwarded untouched; for those that
// don't, the bot keeps its own memory and sends it as flattened history.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/user/reviewbot/internal/types"
	"github.com/user/reviewbot/pkg/llm"
)

const artifactPrefix = "with "

// Turn is one remembered exchange line.
type Turn struct {
	Speaker llm.Role
	Text    string
}

// TokenCounter estimates the token count of a prompt.
type TokenCounter interface {
	Count(text string) int
}

// Bot sends messages through an llm.Client. A Bot is not safe for
// concurrent use; run independent bots in parallel instead.
type Bot struct {
	client  llm.Client
	policy  *RetryPolicy
	limiter *Limiter
	counter TokenCounter
	logger  *slog.Logger

	memory []Turn
}

// Option configures a Bot.
type Option func(*Bot)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p *RetryPolicy) Option {
	return func(b *Bot) { b.policy = p }
}

// WithLimiter shares a concurrency limit with other bots.
func WithLimiter(l *Limiter) Option {
	return func(b *Bot) { b.limiter = l }
}

// WithTokenCounter enables debug logging of prompt size.
func WithTokenCounter(c TokenCounter) Option {
	return func(b *Bot) { b.counter = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.logger = l }
}

// New creates a Bot over client.
func New(client llm.Client, opts ...Option) *Bot {
	b := &Bot{
		client: client,
		policy: DefaultRetryPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SupportsSessions reports whether callers should keep the returned handle
// between calls.
func (b *Bot) SupportsSessions() bool {
	return b.client.SupportsSessions()
}

// Converse sends message and returns the normalized reply with the handle
// to pass on the next call. Failures are logged and reported as an empty
// reply and handle; use Exchange to see the error.
func (b *Bot) Converse(ctx context.Context, message string, handle llm.SessionHandle) (string, llm.SessionHandle) {
	resp, err := b.Exchange(ctx, message, handle)
	if err != nil {
		b.logger.Warn("failed to chat", "error", err)
		return "", llm.SessionHandle{}
	}
	return resp.Text, resp.Handle
}

// Exchange is Converse with the error surfaced. An empty message returns
// an empty response without contacting the backend.
func (b *Bot) Exchange(ctx context.Context, message string, handle llm.SessionHandle) (*llm.Response, error) {
	if message == "" {
		return &llm.Response{}, nil
	}

	logger := b.logger.With("call_id", types.NewCallID())
	start := time.Now()

	if err := b.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for slot: %w", err)
	}
	defer b.limiter.Release()

	local := !b.client.SupportsSessions()
	prompt := message
	if local {
		prompt = b.render(message)
		handle = llm.SessionHandle{}
	}
	if b.counter != nil {
		logger.Debug("prompt size", "tokens", b.counter.Count(prompt), "local_memory", local)
	}

	var resp *llm.Response
	err := b.policy.Execute(ctx, logger, func(ctx context.Context) error {
		r, err := b.client.Send(ctx, prompt, handle, llm.SendOptions{Timeout: b.policy.PerAttemptTimeout})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	if local {
		b.memory = append(b.memory,
			Turn{Speaker: llm.RoleUser, Text: message},
			Turn{Speaker: llm.RoleAssistant, Text: resp.Text},
		)
	}

	logger.Info("response time", "duration_ms", time.Since(start).Milliseconds())

	out := *resp
	out.Text = Normalize(resp.Text)
	return &out, nil
}

// Memory returns a copy of the bot's local memory.
func (b *Bot) Memory() []Turn {
	out := make([]Turn, len(b.memory))
	copy(out, b.memory)
	return out
}

// Reset forgets the local memory, and the backend's transcript when it
// keeps one.
func (b *Bot) Reset() {
	b.memory = nil
	if hk, ok := b.client.(llm.HistoryKeeper); ok {
		hk.ClearHistory()
	}
}

// render flattens memory plus the new message. With no memory the message
// goes out as is.
func (b *Bot) render(message string) string {
	if len(b.memory) == 0 {
		return message
	}
	lines := make([]string, 0, len(b.memory)+1)
	for _, t := range b.memory {
		lines = append(lines, llm.FormatTurn(t.Speaker, t.Text))
	}
	lines = append(lines, llm.FormatTurn(llm.RoleUser, message))
	return strings.Join(lines, "\n")
}

// Normalize strips the "with " artifact some backends prepend to replies.
func Normalize(text string) string {
	for strings.HasPrefix(text, artifactPrefix) {
		text = text[len(artifactPrefix):]
	}
	return text
}
