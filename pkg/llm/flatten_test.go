package llm

import (
	"reflect"
	"testing"
)

func TestIsFlattened(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"single fresh message", "hello", false},
		{"single role line", "user: only one line", false},
		{"two role lines", "user: hello\nassistant: hi", true},
		{"case insensitive roles", "USER: hello\nAssistant: hi", true},
		{"blank lines ignored", "\n  user: hello\n\n assistant: hi\n", true},
		{"second line not a role", "user: hello\nsomething else", false},
		{"first line not a role", "please review\nuser: hello", false},
		{"role without content", "user:\nassistant: hi", false},
		{"system role not accepted", "system: be nice\nuser: hello", false},
		{"later lines unchecked", "user: a\nassistant: b\nfree text", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFlattened(tt.message); got != tt.want {
				t.Errorf("IsFlattened(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestParseFlattened(t *testing.T) {
	input := "user: hello\n" +
		"ASSISTANT:   hi there  \n" +
		"\n" +
		"not a turn\n" +
		"user:    \n" +
		"user: how are you"

	got := ParseFlattened(input)
	want := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
		{Role: RoleUser, Content: "how are you"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseFlattened() = %+v, want %+v", got, want)
	}
}

func TestFormatTurnRoundTrip(t *testing.T) {
	flat := FormatTurn(RoleUser, "a") + "\n" + FormatTurn(RoleAssistant, "b")
	if flat != "user: a\nassistant: b" {
		t.Fatalf("unexpected flattened text %q", flat)
	}
	if !IsFlattened(flat) {
		t.Fatal("expected formatted turns to be detected as flattened")
	}
	if got := ParseFlattened(flat); len(got) != 2 {
		t.Errorf("expected 2 turns, got %d", len(got))
	}
}
