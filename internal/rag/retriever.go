package rag

import (
	"context"
	"fmt"

	"github.com/avazquez/docquery/internal/embedding"
	"github.com/avazquez/docquery/internal/vectorstore"
)

type Retriever struct {
	store    vectorstore.VectorStore
	embedSvc *embedding.Service
}

func NewRetriever(store vectorstore.VectorStore, embedSvc *embedding.Service) *Retriever {
	return &Retriever{store: store, embedSvc: embedSvc}
}

type RetrieveOptions struct {
	TopK     int
	MinScore float64
	Hybrid   bool // blend vector similarity with keyword (FTS) ranking
}

func (r *Retriever) Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedSvc.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searchOpts := vectorstore.SearchOptions{
		TopK:     opts.TopK,
		MinScore: opts.MinScore,
	}

	if opts.Hybrid {
		return r.store.HybridSearch(ctx, query, queryVec, searchOpts)
	}
	return r.store.SimilaritySearch(ctx, queryVec, searchOpts)
}
