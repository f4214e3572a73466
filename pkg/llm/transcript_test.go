package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranscript(t *testing.T) {
	assert.Equal(t, 0, NewTranscript("").Len())

	tr := NewTranscript("be terse")
	require.Equal(t, 1, tr.Len())
	sys, ok := tr.System()
	require.True(t, ok)
	assert.Equal(t, "be terse", sys.Content)
}

func TestTranscriptAppendRejectsSystem(t *testing.T) {
	tr := NewTranscript("sys")
	tr.Append(RoleSystem, "second system")
	tr.Append(RoleUser, "hi")

	turns := tr.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, RoleUser, turns[1].Role)
}

func TestTranscriptUpdateCommitsOnSuccess(t *testing.T) {
	tr := NewTranscript("sys")

	err := tr.Update(func(t *Transcript) error {
		t.Append(RoleUser, "q")
		t.Append(RoleAssistant, "a")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
}

func TestTranscriptUpdateRestoresOnError(t *testing.T) {
	tr := NewTranscript("sys")
	tr.Append(RoleUser, "q")
	before := tr.Turns()
	boom := errors.New("boom")

	err := tr.Update(func(t *Transcript) error {
		t.Reset()
		t.Append(RoleUser, "other")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, tr.Turns())
}

func TestSnapshotIsIndependent(t *testing.T) {
	tr := NewTranscript("")
	tr.Append(RoleUser, "a")
	snap := tr.Snapshot()

	tr.Append(RoleAssistant, "b")
	tr.Restore(snap)
	tr.Append(RoleAssistant, "c")
	tr.Restore(snap)

	assert.Equal(t, []Message{{Role: RoleUser, Content: "a"}}, tr.Turns())
}
