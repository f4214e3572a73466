package llm

import (
	"context"
	"fmt"
)

// LocalClient is a stateless-backend client that keeps the conversation
// transcript in memory and resends it on every call. It never reports
// session support; the handle passed to Send is ignored.
type LocalClient struct {
	completer  Completer
	transcript *Transcript
}

// NewLocalClient wraps completer with a transcript seeded by system.
func NewLocalClient(completer Completer, system string) *LocalClient {
	return &LocalClient{
		completer:  completer,
		transcript: NewTranscript(system),
	}
}

// SupportsSessions always returns false.
func (c *LocalClient) SupportsSessions() bool {
	return false
}

// Send records message in the transcript, asks the backend for a reply and
// records the reply. A message in flattened-history format replaces every
// non-system turn instead of being appended. If anything fails the
// transcript is rolled back to its state before the call.
func (c *LocalClient) Send(ctx context.Context, message string, _ SessionHandle, opts SendOptions) (*Response, error) {
	var resp *Response
	err := c.transcript.Update(func(t *Transcript) error {
		if IsFlattened(message) {
			t.Reset()
			for _, m := range ParseFlattened(message) {
				t.Append(m.Role, m.Content)
			}
		} else {
			t.Append(RoleUser, message)
		}

		callCtx := ctx
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		r, err := c.completer.Complete(callCtx, t.Turns())
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("complete: %w", ErrResponseFormat)
		}

		t.Append(RoleAssistant, r.Text)
		resp = &Response{Text: r.Text, Usage: r.Usage}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ClearHistory drops every turn except the system turn.
func (c *LocalClient) ClearHistory() {
	c.transcript.Reset()
}

// History returns a copy of the transcript, for diagnostics.
func (c *LocalClient) History() []Message {
	return c.transcript.Turns()
}
