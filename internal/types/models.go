// internal/types/models.go
package types

import (
	"fmt"
	"strings"
)

// BotKind selects which configured model a bot talks to. Light bots handle
// cheap summaries, heavy bots the actual review.
type BotKind string

const (
	BotLight BotKind = "light"
	BotHeavy BotKind = "heavy"
)

// ParseBotKind accepts "light" or "heavy" in any case.
func ParseBotKind(s string) (BotKind, error) {
	switch BotKind(strings.ToLower(strings.TrimSpace(s))) {
	case BotLight:
		return BotLight, nil
	case BotHeavy:
		return BotHeavy, nil
	}
	return "", fmt.Errorf("unknown bot kind %q", s)
}

// BatchResult is the outcome of one prompt in a batch run. Failed calls
// leave Reply empty.
type BatchResult struct {
	Key    ItemKey `json:"key"`
	Prompt string  `json:"prompt"`
	Reply  string  `json:"reply"`
}
