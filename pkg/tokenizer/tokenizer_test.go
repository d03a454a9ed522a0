package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 1, CountTokens(""))
	assert.Equal(t, 1, CountTokens("word"))
	assert.Equal(t, 4, CountTokens("three little words"))
	assert.Equal(t, 8, CountTokens("a slightly longer sentence of six"))
}
