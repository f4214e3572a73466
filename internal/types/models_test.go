// internal/types/models_test.go
package types

import (
	"testing"
)

func TestParseBotKind(t *testing.T) {
	tests := []struct {
		in      string
		want    BotKind
		wantErr bool
	}{
		{"light", BotLight, false},
		{"HEAVY", BotHeavy, false},
		{" heavy ", BotHeavy, false},
		{"medium", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBotKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBotKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBotKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
