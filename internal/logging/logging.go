// Package logging builds the process logger. Everything it emits passes
// through RedactedHandler so API keys never reach the terminal or CI logs.
package logging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

const Placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// Zhipu keys are "<id>.<secret>".
	regexp.MustCompile(`[0-9a-f]{32}\.[a-zA-Z0-9]{16}`),
	regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]{16,}`),
}

var secretKeys = map[string]bool{
	"authorization": true,
	"api_key":       true,
	"apikey":        true,
	"x-api-key":     true,
	"password":      true,
	"secret":        true,
}

// ParseLevel maps a config log level to slog. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given level.
func New(level string, w io.Writer) *slog.Logger {
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(NewRedactedHandler(inner))
}

// Redact replaces anything that looks like a credential in s.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, Placeholder)
	}
	return s
}

// RedactedHandler wraps an slog.Handler and scrubs credentials from the
// message and every attribute.
type RedactedHandler struct {
	inner slog.Handler
}

func NewRedactedHandler(inner slog.Handler) *RedactedHandler {
	return &RedactedHandler{inner: inner}
}

func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted)}
}

func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Placeholder)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, g := range group {
			redacted[i] = redactAttr(g)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, Redact(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}
