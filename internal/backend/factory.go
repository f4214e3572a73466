// Package backend builds the llm.Client for a configured provider.
package backend

import (
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/user/reviewbot/pkg/llm"
	"github.com/user/reviewbot/pkg/llm/anthropic"
	"github.com/user/reviewbot/pkg/llm/openai"
	"github.com/user/reviewbot/pkg/llm/responses"
)

// Provider names accepted by New.
const (
	ProviderGLM       = "glm"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderResponses = "responses"
)

// ProviderConfig holds what's needed to construct an LLM client.
type ProviderConfig struct {
	Provider   string
	LLM        llm.Config
	HTTPClient *http.Client // optional; shared by every HTTP-based backend
}

// New creates the appropriate client for cfg.Provider. Chat-completion
// providers are wrapped in an llm.LocalClient that keeps the transcript;
// the responses provider keeps it server-side.
func New(cfg ProviderConfig) (llm.Client, error) {
	conf := cfg.LLM
	switch cfg.Provider {
	case ProviderGLM:
		return llm.NewLocalClient(openai.New(&conf, openaiOptions(cfg, openai.WithDialect(openai.DialectGLM))...), conf.SystemMessage), nil

	case ProviderOpenAI:
		return llm.NewLocalClient(openai.New(&conf, openaiOptions(cfg)...), conf.SystemMessage), nil

	case ProviderAnthropic:
		var extra []option.RequestOption
		if cfg.HTTPClient != nil {
			extra = append(extra, option.WithHTTPClient(cfg.HTTPClient))
		}
		return llm.NewLocalClient(anthropic.New(&conf, extra...), conf.SystemMessage), nil

	case ProviderResponses:
		return responses.New(&conf, cfg.HTTPClient), nil

	case "":
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider in config)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

func openaiOptions(cfg ProviderConfig, opts ...openai.Option) []openai.Option {
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}
	return opts
}
