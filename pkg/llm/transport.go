package llm

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport is an http.RoundTripper that logs every request at
// debug level. URLs are redacted before logging.
type LoggingTransport struct {
	Logger    *slog.Logger
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	url := req.URL.Redacted()

	t.Logger.Debug("sending request", "method", req.Method, "url", url)

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.Logger.Debug("request failed", "method", req.Method, "url", url, "duration_ms", elapsed.Milliseconds(), "error", err)
		return nil, err
	}

	t.Logger.Debug("response received", "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())
	return resp, nil
}

// NewHTTPClient returns an http.Client with a LoggingTransport. A nil
// logger falls back to slog.Default(). Timeout may be zero; callers
// usually bound requests through their context instead.
func NewHTTPClient(logger *slog.Logger, timeout time.Duration) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &http.Client{
		Transport: &LoggingTransport{
			Logger:    logger,
			Transport: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
