package llm

import (
	"context"
	"testing"
)

// MockCompleter is a test double that satisfies the Completer interface.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, messages []Message) (*Response, error)
	Calls        [][]Message
}

func (m *MockCompleter) Complete(ctx context.Context, messages []Message) (*Response, error) {
	m.Calls = append(m.Calls, messages)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return &Response{Text: "mock response"}, nil
}

func TestLocalClientSatisfiesInterfaces(t *testing.T) {
	var _ Client = (*LocalClient)(nil)
	var _ HistoryKeeper = (*LocalClient)(nil)
}

func TestLocalClientDoesNotSupportSessions(t *testing.T) {
	c := NewLocalClient(&MockCompleter{}, "")
	if c.SupportsSessions() {
		t.Error("expected LocalClient to report no session support")
	}
}

func TestLocalClientIgnoresHandle(t *testing.T) {
	c := NewLocalClient(&MockCompleter{}, "")

	resp, err := c.Send(context.Background(), "hello", SessionHandle{SessionID: "S", ParentMessageID: "P"}, SendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Text)
	}
	if !resp.Handle.IsZero() {
		t.Errorf("expected empty handle, got %+v", resp.Handle)
	}
}

func TestSessionHandleIsZero(t *testing.T) {
	if !(SessionHandle{}).IsZero() {
		t.Error("zero handle should report IsZero")
	}
	if (SessionHandle{ParentMessageID: "p"}).IsZero() {
		t.Error("handle with parent id should not report IsZero")
	}
}
