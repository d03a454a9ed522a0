package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avazquez/docquery/internal/config"
	"github.com/avazquez/docquery/internal/vectorstore"
	"github.com/avazquez/docquery/pkg/chunk"
)

func testRegistry() *Registry {
	return NewRegistry(nil, nil, 3, config.SimilarityConfig{High: 0.7, Moderate: 0.4})
}

func TestRegistryDefinitions(t *testing.T) {
	defs := testRegistry().Definitions()
	require.Len(t, defs, 2)

	names := []string{defs[0].Name, defs[1].Name}
	require.Contains(t, names, NameSearchDocuments)
	require.Contains(t, names, NameCalculator)
	for _, d := range defs {
		require.NotEmpty(t, d.Description)
		require.NotEmpty(t, d.Required)
	}
}

func TestRegistryExecuteCalculator(t *testing.T) {
	out, err := testRegistry().Execute(context.Background(),
		NameCalculator, json.RawMessage(`{"expression": "2 + 3 * 4"}`))
	require.NoError(t, err)
	require.Equal(t, "The result of 2 + 3 * 4 is 14", out)
}

func TestRegistryExecuteCalculatorBadExpression(t *testing.T) {
	// A bad expression is reported to the model, not surfaced as an error.
	out, err := testRegistry().Execute(context.Background(),
		NameCalculator, json.RawMessage(`{"expression": "1 / 0"}`))
	require.NoError(t, err)
	require.Contains(t, out, "Error calculating result")
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	_, err := testRegistry().Execute(context.Background(), "launch_missiles", json.RawMessage(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown tool")
}

func TestRegistryExecuteBadInput(t *testing.T) {
	_, err := testRegistry().Execute(context.Background(), NameCalculator, json.RawMessage(`not json`))
	require.Error(t, err)
}

func TestFormatResultsLabels(t *testing.T) {
	r := testRegistry()
	results := []vectorstore.SearchResult{
		{Source: "a.md", ChunkIndex: 0, Score: 0.91, Content: "alpha",
			Metadata: chunk.Metadata{SectionTitle: "Intro"}},
		{Source: "b.md", ChunkIndex: 2, Score: 0.55, Content: "beta"},
		{Source: "c.md", ChunkIndex: 1, Score: 0.12, Content: "gamma"},
	}
	out := r.formatResults(results)
	require.Contains(t, out, "relevance: High")
	require.Contains(t, out, "relevance: Moderate")
	require.Contains(t, out, "relevance: Low")
	require.Contains(t, out, "[section: Intro]")
	require.Contains(t, out, "alpha")
}
