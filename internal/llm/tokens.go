package llm

import (
	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates prompt sizes. Gemini does not publish a local
// tokenizer, so the GPT-4 encoding is used as an approximation.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a counter; on codec failure it falls back to a
// character heuristic instead of failing.
func NewTokenCounter() *TokenCounter {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return &TokenCounter{}
	}
	return &TokenCounter{codec: codec}
}

// CountTokens returns the approximate number of tokens in text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.codec == nil {
		// 4 chars ≈ 1 token
		return len(text) / 4
	}

	count, err := tc.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}
