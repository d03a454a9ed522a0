package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avazquez/docquery/internal/config"
	"github.com/avazquez/docquery/internal/embedding"
	"github.com/avazquez/docquery/internal/llm"
	"github.com/avazquez/docquery/internal/tools"
	"github.com/avazquez/docquery/internal/vectorstore"
	"github.com/avazquez/docquery/pkg/chunk"
	"github.com/avazquez/docquery/pkg/tokenizer"
)

// ErrDocumentTooLarge is returned when ingestion input exceeds the configured
// maximum document length.
var ErrDocumentTooLarge = errors.New("document exceeds maximum length")

// ErrEmptyDocument is returned when the input chunks to nothing.
var ErrEmptyDocument = errors.New("document produced no chunks")

type Pipeline interface {
	Ingest(ctx context.Context, req IngestRequest) (int, error)
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
	Search(ctx context.Context, req SearchRequest) ([]vectorstore.SearchResult, error)
}

type IngestRequest struct {
	// Source identifies the document; re-ingesting the same source replaces
	// its chunks.
	Source  string
	Content string
}

type QueryRequest struct {
	Query    string  `json:"query"`
	TopK     int     `json:"top_k,omitempty"`
	MinScore float64 `json:"min_score,omitempty"` // overrides the classifier's threshold
	Hybrid   bool    `json:"hybrid,omitempty"`
	Model    string  `json:"model,omitempty"`
	Provider string  `json:"provider,omitempty"`
}

type QueryResponse struct {
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	Sources    []string   `json:"sources"`
	QueryType  QueryType  `json:"query_type"`
	Confidence float64    `json:"query_confidence"`
	ToolsUsed  []string   `json:"tools_used,omitempty"`
	Model      string     `json:"model"`
	Tokens     int        `json:"tokens"`
}

type SearchRequest struct {
	Query    string  `json:"query"`
	TopK     int     `json:"top_k,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Hybrid   bool    `json:"hybrid,omitempty"`
}

type pipeline struct {
	store     vectorstore.VectorStore
	embedSvc  *embedding.Service
	retriever *Retriever
	generator *Generator
	chunkCfg  chunk.Config
	maxDocLen int
	llmCfg    config.LLMConfig
}

func NewPipeline(store vectorstore.VectorStore, embedSvc *embedding.Service, gw llm.Gateway, registry *tools.Registry, cfg *config.Config) Pipeline {
	return &pipeline{
		store:     store,
		embedSvc:  embedSvc,
		retriever: NewRetriever(store, embedSvc),
		generator: NewGenerator(gw, registry),
		chunkCfg:  cfg.Chunking.ChunkConfig(),
		maxDocLen: cfg.Chunking.MaxDocumentLength,
		llmCfg:    cfg.LLM,
	}
}

// Ingest chunks the document, embeds every chunk, drops the source's previous
// chunks, and stores the new generation. Returns the number of chunks stored.
func (p *pipeline) Ingest(ctx context.Context, req IngestRequest) (int, error) {
	if p.maxDocLen > 0 && len(req.Content) > p.maxDocLen {
		return 0, fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, len(req.Content), p.maxDocLen)
	}

	chunks, err := chunk.ProcessDocument(req.Content, req.Source, p.chunkCfg)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return 0, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := p.embedSvc.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings))
	}

	stored := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		stored[i] = vectorstore.Chunk{
			ID:         uuid.New(),
			Source:     req.Source,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Embedding:  embeddings[i],
			TokenCount: tokenizer.CountTokens(c.Content),
			Metadata:   c.Metadata,
		}
	}

	// Replace, never accumulate: the previous generation of chunks for this
	// source goes away before the new one lands.
	if err := p.store.DeleteBySource(ctx, req.Source); err != nil {
		return 0, fmt.Errorf("delete previous chunks: %w", err)
	}
	if err := p.store.Upsert(ctx, stored); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	slog.Info("document ingested", "source", req.Source, "chunks", len(stored))
	return len(stored), nil
}

func (p *pipeline) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if req.TopK <= 0 {
		req.TopK = p.llmCfg.TopK
	}

	queryType, confidence := ClassifyQuery(req.Query)
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = RecommendedThreshold(queryType)
	}
	slog.Info("query classified",
		"type", queryType, "confidence", confidence, "threshold", minScore)

	results, err := p.retriever.Retrieve(ctx, req.Query, RetrieveOptions{
		TopK:     req.TopK,
		MinScore: minScore,
		Hybrid:   req.Hybrid,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	model := req.Model
	if model == "" {
		model = p.llmCfg.DefaultModel
	}

	genResp, err := p.generator.Generate(ctx, GenerateRequest{
		Query:       req.Query,
		Context:     results,
		Model:       model,
		Provider:    req.Provider,
		Temperature: p.llmCfg.Temperature,
		MaxTokens:   p.llmCfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &QueryResponse{
		Answer:     genResp.Answer,
		Citations:  genResp.Citations,
		Sources:    uniqueSources(results),
		QueryType:  queryType,
		Confidence: confidence,
		ToolsUsed:  genResp.ToolsUsed,
		Model:      genResp.Usage.Model,
		Tokens:     genResp.Usage.TotalTokens,
	}, nil
}

func (p *pipeline) Search(ctx context.Context, req SearchRequest) ([]vectorstore.SearchResult, error) {
	if req.TopK <= 0 {
		req.TopK = 10
	}

	return p.retriever.Retrieve(ctx, req.Query, RetrieveOptions{
		TopK:     req.TopK,
		MinScore: req.MinScore,
		Hybrid:   req.Hybrid,
	})
}

func uniqueSources(results []vectorstore.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var sources []string
	for _, r := range results {
		if !seen[r.Source] {
			seen[r.Source] = true
			sources = append(sources, r.Source)
		}
	}
	return sources
}
