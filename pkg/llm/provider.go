package llm

import (
	"context"
	"time"
)

// Client is the capability-bearing interface every backend satisfies.
// Callers branch on SupportsSessions, never on the concrete type.
type Client interface {
	// Send delivers message to the backend. Session-aware backends resume
	// the conversation identified by handle; stateless ones ignore it.
	Send(ctx context.Context, message string, handle SessionHandle, opts SendOptions) (*Response, error)

	// SupportsSessions reports whether the remote service retains
	// conversation state keyed by the returned SessionHandle.
	SupportsSessions() bool
}

// HistoryKeeper is implemented by clients that own a local transcript.
type HistoryKeeper interface {
	ClearHistory()
	History() []Message
}

// Completer performs one stateless chat completion over a full transcript.
// LocalClient layers conversation state on top of it.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
}

// SendOptions tunes a single Send call.
type SendOptions struct {
	// Timeout bounds the remote call. Zero means no timeout beyond ctx.
	Timeout time.Duration
}

// Config holds common configuration for LLM backends.
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	SystemMessage string
	MaxTokens     int
	Temperature   float32
	TopP          float32
}
