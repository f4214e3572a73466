package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		excludes string
	}{
		{"openai key", "using sk-1234567890abcdefghijklmnop", "sk-1234567890"},
		{"anthropic key", "key sk-ant-REDACTED", "api03"},
		{"glm key", "key 0123456789abcdef0123456789abcdef.AbCdEfGhIjKlMnOp", "AbCdEfGh"},
		{"bearer", "Authorization: Bearer abcdef1234567890xyz", "abcdef1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Redact(tt.input)
			if !strings.Contains(got, Placeholder) {
				t.Errorf("Redact() = %q, expected placeholder", got)
			}
			if strings.Contains(got, tt.excludes) {
				t.Errorf("Redact() = %q, should not contain %q", got, tt.excludes)
			}
		})
	}

	if got := Redact("response time"); got != "response time" {
		t.Errorf("plain text changed: %q", got)
	}
}

func TestRedactedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactedHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.With("api_key", "plain-secret").Warn("failed to chat",
		"error", errors.New("API error (status 401): bad key sk-1234567890abcdefghijklmnop"),
		"tokens", 42,
		slog.Group("req", "authorization", "Bearer xyz"),
	)

	out := buf.String()
	for _, leaked := range []string{"plain-secret", "sk-1234567890", "Bearer xyz"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaked %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "tokens=42") {
		t.Errorf("non-secret attribute missing: %s", out)
	}
	if !strings.Contains(out, "failed to chat") {
		t.Errorf("message missing: %s", out)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn should be logged")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
