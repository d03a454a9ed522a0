package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/avazquez/docquery/internal/llm"
	"github.com/avazquez/docquery/internal/tools"
	"github.com/avazquez/docquery/internal/vectorstore"
)

const answerSystemPrompt = `You are a helpful assistant that answers questions about a document collection.

Core principles:
1. Only make statements supported by the provided context or by search_documents results.
2. Begin your answer with "Based on the available documents...".
3. Cite sources as [Source N] where N is the context chunk number.
4. If the context is insufficient, call search_documents with alternative phrasings before concluding the information is missing.
5. Use the calculator tool for any arithmetic over document data instead of computing it yourself.
6. State clearly when the documents do not cover the question.`

type Generator struct {
	gateway  llm.Gateway
	registry *tools.Registry
}

func NewGenerator(gw llm.Gateway, registry *tools.Registry) *Generator {
	return &Generator{gateway: gw, registry: registry}
}

type GenerateRequest struct {
	Query       string
	Context     []vectorstore.SearchResult
	Model       string
	Provider    string
	Temperature float64
	MaxTokens   int
}

type GenerateResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	ToolsUsed []string   `json:"tools_used,omitempty"`
	Usage     llm.ChatResponse
}

type Citation struct {
	Source  string  `json:"source"`
	ChunkID string  `json:"chunk_id"`
	Section string  `json:"section,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Generate produces a grounded answer. The retrieved context rides in the
// first user message; the search and calculator tools stay available so the
// model can broaden coverage or do arithmetic before answering.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	contextStr := buildContext(req.Context)

	messages := []llm.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", contextStr, req.Query)},
	}

	chatReq := llm.ChatRequest{
		Provider:    req.Provider,
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	resp, err := g.gateway.ChatWithTools(ctx, chatReq, g.registry.Definitions(), g.registry)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	citations := make([]Citation, len(req.Context))
	for i, c := range req.Context {
		citations[i] = Citation{
			Source:  c.Source,
			ChunkID: c.ChunkID.String(),
			Section: c.Metadata.SectionTitle,
			Content: truncate(c.Content, 200),
			Score:   c.Score,
		}
	}

	return &GenerateResponse{
		Answer:    resp.Content,
		Citations: citations,
		ToolsUsed: resp.ToolsUsed,
		Usage:     *resp,
	}, nil
}

func buildContext(results []vectorstore.SearchResult) string {
	if len(results) == 0 {
		return "(no documents matched the query)\n"
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[Source %d] %s (score: %.3f)\n%s\n\n", i+1, r.Source, r.Score, r.Content)
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
