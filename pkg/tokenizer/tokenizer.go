package tokenizer

import (
	"strings"
)

// CountTokens provides a rough token count estimate.
// For production, use tiktoken-go for exact counts.
func CountTokens(text string) int {
	// Rough estimate: ~4 chars per token for English
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}
