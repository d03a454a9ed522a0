package vectorstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/avazquez/docquery/pkg/chunk"
)

// Chunk is one embeddable fragment persisted for a source document.
type Chunk struct {
	ID         uuid.UUID
	Source     string
	ChunkIndex int
	Content    string
	Embedding  []float32
	TokenCount int
	Metadata   chunk.Metadata
}

type SearchOptions struct {
	TopK     int
	MinScore float64
}

type SearchResult struct {
	ChunkID    uuid.UUID      `json:"chunk_id"`
	Source     string         `json:"source"`
	Content    string         `json:"content"`
	Score      float64        `json:"score"`
	ChunkIndex int            `json:"chunk_index"`
	Metadata   chunk.Metadata `json:"metadata"`
}

// VectorStore persists chunks and answers similarity queries. Re-ingesting a
// source goes through DeleteBySource first so stale chunks never linger.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
	HybridSearch(ctx context.Context, query string, queryVec []float32, opts SearchOptions) ([]SearchResult, error)
	DeleteBySource(ctx context.Context, source string) error
}
