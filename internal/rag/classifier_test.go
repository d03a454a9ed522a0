package rag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  QueryType
	}{
		{"when question", "When was the protocol released?", QueryFactual},
		{"who question", "Who wrote the first draft?", QueryFactual},
		{"year reference", "The 2019 report mentions a merger, is that right", QueryFactual},
		{"what is", "What is a vector index?", QueryDefinition},
		{"define", "Define cosine similarity", QueryDefinition},
		{"explain", "Explain the ingestion lifecycle", QueryDefinition},
		{"why question", "Why does the index need rebuilding?", QueryContext},
		{"how question", "How does the pipeline handle failures?", QueryContext},
		{"difference", "Is there any difference between the two formats?", QueryContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt, confidence := ClassifyQuery(tt.query)
			require.Equal(t, tt.want, qt)
			require.Greater(t, confidence, 0.0)
			require.LessOrEqual(t, confidence, 1.0)
		})
	}
}

func TestClassifyQueryDefault(t *testing.T) {
	qt, confidence := ClassifyQuery("banana sandwich protocol")
	require.Equal(t, QueryFactual, qt)
	require.InDelta(t, 0.3, confidence, 1e-9)
}

func TestRecommendedThreshold(t *testing.T) {
	require.InDelta(t, 0.45, RecommendedThreshold(QueryFactual), 1e-9)
	require.InDelta(t, 0.4, RecommendedThreshold(QueryDefinition), 1e-9)
	require.InDelta(t, 0.3, RecommendedThreshold(QueryContext), 1e-9)
	require.InDelta(t, 0.5, RecommendedThreshold(QueryType("other")), 1e-9)

	// Contextual queries get the loosest cutoff.
	require.Less(t, RecommendedThreshold(QueryContext), RecommendedThreshold(QueryDefinition))
	require.Less(t, RecommendedThreshold(QueryDefinition), RecommendedThreshold(QueryFactual))
}
