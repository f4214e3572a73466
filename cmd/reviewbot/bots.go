package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/reviewbot/internal/backend"
	"github.com/user/reviewbot/internal/bot"
	"github.com/user/reviewbot/internal/config"
	"github.com/user/reviewbot/internal/limits"
	"github.com/user/reviewbot/internal/types"
	"github.com/user/reviewbot/pkg/llm"
)

func botKind(cmd *cobra.Command) types.BotKind {
	if heavy, _ := cmd.Flags().GetBool("heavy"); heavy {
		return types.BotHeavy
	}
	return types.BotLight
}

// newBot builds an independent bot of the given kind. Bots built with the
// same limiter share its concurrency budget.
func newBot(cfg *config.Config, kind types.BotKind, limiter *bot.Limiter, logger *slog.Logger) (*bot.Bot, error) {
	model := cfg.Model(kind)
	client, err := backend.New(backend.ProviderConfig{
		Provider: cfg.LLM.Provider,
		LLM: llm.Config{
			BaseURL:       cfg.LLM.BaseURL,
			APIKey:        cfg.LLM.APIKey,
			Model:         model,
			SystemMessage: cfg.LLM.SystemMessage,
			MaxTokens:     cfg.LLM.MaxTokens,
			Temperature:   cfg.LLM.Temperature,
			TopP:          cfg.LLM.TopP,
		},
		HTTPClient: llm.NewHTTPClient(logger, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", kind, err)
	}

	logger = logger.With("bot", kind)
	opts := []bot.Option{
		bot.WithRetryPolicy(bot.NewRetryPolicy(cfg.LLM.Retries, cfg.Timeout())),
		bot.WithLimiter(limiter),
		bot.WithLogger(logger),
	}
	// Token counts only show up in debug logs.
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		if counter, err := limits.NewCounter(model); err == nil {
			opts = append(opts, bot.WithTokenCounter(counter))
		} else {
			logger.Debug("token counting disabled", "error", err)
		}
	}

	logger.Debug("bot ready",
		"provider", cfg.LLM.Provider,
		"model", model,
		"sessions", client.SupportsSessions(),
		"limits", limits.For(model).String(),
	)
	return bot.New(client, opts...), nil
}
