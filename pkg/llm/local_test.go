package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededClient returns a client whose transcript is [sys, user:"old", assistant:"stale"].
func seededClient(t *testing.T, completer *MockCompleter) *LocalClient {
	t.Helper()
	c := NewLocalClient(completer, "sys")
	c.transcript.Append(RoleUser, "old")
	c.transcript.Append(RoleAssistant, "stale")
	return c
}

func TestLocalClientRollsBackOnFailure(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(context.Context, []Message) (*Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := NewLocalClient(completer, "sys")
	c.transcript.Append(RoleUser, "a")
	c.transcript.Append(RoleAssistant, "b")
	before := c.History()

	_, err := c.Send(context.Background(), "c", SessionHandle{}, SendOptions{})
	require.Error(t, err)
	assert.Equal(t, before, c.History())
}

func TestLocalClientRollsBackResyncOnFailure(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(context.Context, []Message) (*Response, error) {
			return nil, &APIError{StatusCode: 500, Body: "boom"}
		},
	}
	c := seededClient(t, completer)
	before := c.History()

	_, err := c.Send(context.Background(), "user: hello\nassistant: hi\nuser: next", SessionHandle{}, SendOptions{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, before, c.History())
}

func TestLocalClientRollsBackOnFormatError(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(context.Context, []Message) (*Response, error) {
			return nil, ErrResponseFormat
		},
	}
	c := seededClient(t, completer)
	before := c.History()

	_, err := c.Send(context.Background(), "hello", SessionHandle{}, SendOptions{})
	require.ErrorIs(t, err, ErrResponseFormat)
	assert.Equal(t, before, c.History())
}

func TestLocalClientResynchronizesFromFlattenedHistory(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(context.Context, []Message) (*Response, error) {
			return &Response{Text: "fine"}, nil
		},
	}
	c := seededClient(t, completer)

	resp, err := c.Send(context.Background(), "user: hello\nassistant: hi\nuser: how are you", SessionHandle{}, SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Text)

	want := []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "how are you"},
		{Role: RoleAssistant, Content: "fine"},
	}
	assert.Equal(t, want, c.History())

	// The backend saw the resynchronized transcript, not the stale one.
	require.Len(t, completer.Calls, 1)
	assert.Equal(t, want[:4], completer.Calls[0])
}

func TestLocalClientAppendsFreshMessage(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(context.Context, []Message) (*Response, error) {
			return &Response{Text: "reply"}, nil
		},
	}
	c := seededClient(t, completer)

	_, err := c.Send(context.Background(), "hello", SessionHandle{}, SendOptions{})
	require.NoError(t, err)

	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "old"},
		{Role: RoleAssistant, Content: "stale"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "reply"},
	}, c.History())
}

func TestLocalClientSingleRoleLineIsFreshMessage(t *testing.T) {
	c := seededClient(t, &MockCompleter{})

	_, err := c.Send(context.Background(), "user: only one line", SessionHandle{}, SendOptions{})
	require.NoError(t, err)

	history := c.History()
	require.Len(t, history, 5)
	assert.Equal(t, Message{Role: RoleUser, Content: "user: only one line"}, history[3])
}

func TestLocalClientWithoutSystemMessage(t *testing.T) {
	c := NewLocalClient(&MockCompleter{}, "")

	_, err := c.Send(context.Background(), "user: a\nassistant: b\nuser: c", SessionHandle{}, SendOptions{})
	require.NoError(t, err)

	history := c.History()
	require.Len(t, history, 4)
	assert.Equal(t, RoleUser, history[0].Role)
}

func TestLocalClientTimeoutCancelsAndRollsBack(t *testing.T) {
	completer := &MockCompleter{
		CompleteFunc: func(ctx context.Context, _ []Message) (*Response, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return &Response{Text: "too late"}, nil
			}
		},
	}
	c := seededClient(t, completer)
	before := c.History()

	start := time.Now()
	_, err := c.Send(context.Background(), "hello", SessionHandle{}, SendOptions{Timeout: 20 * time.Millisecond})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, before, c.History())
}

func TestLocalClientClearHistoryKeepsSystem(t *testing.T) {
	c := seededClient(t, &MockCompleter{})

	c.ClearHistory()
	assert.Equal(t, []Message{{Role: RoleSystem, Content: "sys"}}, c.History())
}

func TestLocalClientHistoryIsACopy(t *testing.T) {
	c := seededClient(t, &MockCompleter{})

	history := c.History()
	history[1].Content = "tampered"
	assert.Equal(t, "old", c.History()[1].Content)
}
