package llm

import "slices"

// Transcript is an ordered list of conversation turns. At most one system
// turn exists and it is always first. A Transcript is not safe for
// concurrent use; it is owned by a single client.
type Transcript struct {
	turns []Message
}

// Snapshot is an immutable copy of a transcript used as a rollback point.
type Snapshot struct {
	turns []Message
}

// NewTranscript creates a transcript seeded with an optional system turn.
func NewTranscript(system string) *Transcript {
	t := &Transcript{}
	if system != "" {
		t.turns = append(t.turns, Message{Role: RoleSystem, Content: system})
	}
	return t
}

// Len returns the number of turns, including the system turn.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the transcript.
func (t *Transcript) Turns() []Message {
	return slices.Clone(t.turns)
}

// System returns the system turn, if any.
func (t *Transcript) System() (Message, bool) {
	if len(t.turns) > 0 && t.turns[0].Role == RoleSystem {
		return t.turns[0], true
	}
	return Message{}, false
}

// Append adds a user or assistant turn. System turns are rejected here;
// they are only set at construction.
func (t *Transcript) Append(role Role, content string) {
	if role == RoleSystem {
		return
	}
	t.turns = append(t.turns, Message{Role: role, Content: content})
}

// Reset drops every turn except the system turn.
func (t *Transcript) Reset() {
	sys, ok := t.System()
	t.turns = t.turns[:0:0]
	if ok {
		t.turns = append(t.turns, sys)
	}
}

// Snapshot captures the current turns.
func (t *Transcript) Snapshot() Snapshot {
	return Snapshot{turns: slices.Clone(t.turns)}
}

// Restore replaces the transcript with the snapshot's turns.
func (t *Transcript) Restore(s Snapshot) {
	t.turns = slices.Clone(s.turns)
}

// Update applies fn as a scoped mutation. If fn returns an error the
// transcript is restored to the state it had before Update was called,
// so a failed exchange leaves no visible side effects.
func (t *Transcript) Update(fn func(*Transcript) error) error {
	snap := t.Snapshot()
	if err := fn(t); err != nil {
		t.Restore(snap)
		return err
	}
	return nil
}
