package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avazquez/docquery/pkg/chunk"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	assert.Equal(t, 5, cfg.LLM.TopK)
	assert.Equal(t, 0.7, cfg.Similarity.High)
	assert.Equal(t, 0.4, cfg.Similarity.Moderate)

	defaults := chunk.DefaultConfig()
	assert.Equal(t, defaults.MaxChunkSize, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, defaults.OverlapSize, cfg.Chunking.OverlapSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CHUNK_MAX_SIZE", "800")
	t.Setenv("LLM_TEMPERATURE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 800, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRequiresDatabaseAndKey(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Database.URL = ""
	cfg.LLM.AnthropicKey = ""
	cfg.LLM.OpenAIKey = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY or OPENAI_API_KEY")
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Database.URL = "postgres://localhost/docquery"
	cfg.LLM.AnthropicKey = "key"

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadChunking(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Database.URL = "postgres://localhost/docquery"
	cfg.LLM.AnthropicKey = "key"
	cfg.Chunking.MinChunkSize = cfg.Chunking.MaxChunkSize + 1

	require.Error(t, cfg.Validate())
}

func TestChunkConfigMapping(t *testing.T) {
	cc := ChunkingConfig{
		MaxChunkSize:       1000,
		MinChunkSize:       300,
		OverlapSize:        150,
		StructuredMaxSize:  500,
		TitleMaxLength:     80,
		TailMergeTolerance: 1.2,
	}.ChunkConfig()

	assert.Equal(t, 1000, cc.MaxChunkSize)
	assert.Equal(t, 150, cc.OverlapSize)
	assert.Equal(t, 1.2, cc.TailMergeTolerance)
}
