package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avazquez/docquery/internal/config"
	"github.com/avazquez/docquery/internal/embedding"
	"github.com/avazquez/docquery/internal/llm"
	"github.com/avazquez/docquery/internal/vectorstore"
)

const (
	NameSearchDocuments = "search_documents"
	NameCalculator      = "calculator"
)

// Registry is the closed set of tools the model may call: document search
// and the arithmetic calculator. Unknown tool names are an error.
type Registry struct {
	store      vectorstore.VectorStore
	embedSvc   *embedding.Service
	topK       int
	similarity config.SimilarityConfig
}

func NewRegistry(store vectorstore.VectorStore, embedSvc *embedding.Service, topK int, sim config.SimilarityConfig) *Registry {
	if topK <= 0 {
		topK = 3
	}
	return &Registry{
		store:      store,
		embedSvc:   embedSvc,
		topK:       topK,
		similarity: sim,
	}
}

// Definitions returns the tool schemas offered to the model.
func (r *Registry) Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Name:        NameSearchDocuments,
			Description: "Search the document database for relevant information",
			InputSchema: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			Required: []string{"query"},
		},
		{
			Name:        NameCalculator,
			Description: "A simple calculator that performs basic arithmetic operations",
			InputSchema: map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "The mathematical expression to evaluate (e.g., '2 + 3 * 4')",
				},
			},
			Required: []string{"expression"},
		},
	}
}

func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	switch name {
	case NameSearchDocuments:
		var in struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("decode %s input: %w", name, err)
		}
		return r.executeSearch(ctx, in.Query)
	case NameCalculator:
		var in struct {
			Expression string `json:"expression"`
		}
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("decode %s input: %w", name, err)
		}
		return r.executeCalculator(in.Expression)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (r *Registry) executeSearch(ctx context.Context, query string) (string, error) {
	slog.Info("executing document search", "query", query)

	queryVec, err := r.embedSvc.EmbedSingle(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed search query: %w", err)
	}

	results, err := r.store.SimilaritySearch(ctx, queryVec, vectorstore.SearchOptions{TopK: r.topK})
	if err != nil {
		return "", fmt.Errorf("search documents: %w", err)
	}
	if len(results) == 0 {
		return "No relevant documents found.", nil
	}

	return r.formatResults(results), nil
}

func (r *Registry) formatResults(results []vectorstore.SearchResult) string {
	var parts []string
	for _, res := range results {
		label := relevanceLabel(res.Score, r.similarity)
		header := fmt.Sprintf("Document %q (chunk %d, relevance: %s, score: %.2f)",
			res.Source, res.ChunkIndex, label, res.Score)
		if res.Metadata.SectionTitle != "" {
			header += fmt.Sprintf(" [section: %s]", res.Metadata.SectionTitle)
		}
		parts = append(parts, header+":\n"+res.Content)
	}
	return strings.Join(parts, "\n\n")
}

func (r *Registry) executeCalculator(expression string) (string, error) {
	slog.Info("executing calculator", "expression", expression)

	value, err := Evaluate(expression)
	if err != nil {
		// The error text goes back to the model as the tool result.
		return fmt.Sprintf("Error calculating result: %s", err), nil
	}
	return FormatResult(expression, value), nil
}

func relevanceLabel(score float64, sim config.SimilarityConfig) string {
	switch {
	case score >= sim.High:
		return "High"
	case score >= sim.Moderate:
		return "Moderate"
	default:
		return "Low"
	}
}
