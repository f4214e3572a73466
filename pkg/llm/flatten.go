package llm

import (
	"regexp"
	"strings"
)

// The flattened-history format encodes several turns as "role: content"
// lines. It moves conversation state across the bot/client boundary when
// the backend keeps no server-side session.

var (
	flattenedLine = regexp.MustCompile(`(?i)^(user|assistant):\s*.+$`)
	flattenedTurn = regexp.MustCompile(`(?i)^(user|assistant):\s*(.+)$`)
)

// FormatTurn renders one turn as a flattened-history line.
func FormatTurn(role Role, content string) string {
	return string(role) + ": " + content
}

// IsFlattened reports whether message looks like a flattened transcript
// rather than a single fresh utterance. It needs at least two non-empty
// lines and the first two must both be role-prefixed.
func IsFlattened(message string) bool {
	var lines []string
	for _, line := range strings.Split(message, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == 2 {
			break
		}
	}
	if len(lines) < 2 {
		return false
	}
	return flattenedLine.MatchString(lines[0]) && flattenedLine.MatchString(lines[1])
}

// ParseFlattened extracts every role-prefixed line of message as a turn.
// Lines that do not match, or whose content is blank, are skipped.
func ParseFlattened(message string) []Message {
	var out []Message
	for _, line := range strings.Split(message, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		m := flattenedTurn.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m[2])
		if content == "" {
			continue
		}
		out = append(out, Message{Role: Role(strings.ToLower(m[1])), Content: content})
	}
	return out
}
