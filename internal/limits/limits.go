// Package limits describes per-model token budgets and counts prompt tokens.
// Budgets are currently unbounded; nothing in the bot truncates prompts.
package limits

import (
	"fmt"
	"math"

	"github.com/pkoukk/tiktoken-go"
)

const knowledgeCutOff = "2021-09-01"

// TokenLimits is the token budget for one model.
type TokenLimits struct {
	Model           string
	MaxTokens       int
	RequestTokens   int
	ResponseTokens  int
	KnowledgeCutOff string
}

// For returns the limits for model.
func For(model string) TokenLimits {
	return TokenLimits{
		Model:           model,
		MaxTokens:       math.MaxInt,
		RequestTokens:   math.MaxInt,
		ResponseTokens:  math.MaxInt,
		KnowledgeCutOff: knowledgeCutOff,
	}
}

// Fits reports whether a prompt of n tokens is within the request budget.
func (l TokenLimits) Fits(n int) bool {
	return n <= l.RequestTokens
}

func (l TokenLimits) String() string {
	return fmt.Sprintf("max_tokens=%d, request_tokens=%d, response_tokens=%d", l.MaxTokens, l.RequestTokens, l.ResponseTokens)
}

// Counter counts tokens with the tokenizer of a model. Counts are
// estimates for non-OpenAI models.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter selects the tokenizer for model, falling back to cl100k_base
// for models tiktoken does not know.
func NewCounter(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Counter{enc: enc}, nil
}

func (c *Counter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
