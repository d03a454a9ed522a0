// Package chunk splits raw document text into semantically coherent,
// size-bounded, overlapping fragments ready for embedding and retrieval.
// Chunking is a pure function of its input: no I/O, no shared state, and
// byte-identical output for identical input and configuration (timestamps
// aside), so documents may be chunked concurrently without coordination.
package chunk

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidConfig is returned before any processing when configuration
// values are inconsistent.
var ErrInvalidConfig = errors.New("invalid chunk config")

// Config enumerates the chunking knobs. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	MaxChunkSize       int     // hard upper bound for prose buffers
	MinChunkSize       int     // lower bound, except a section's final chunk
	OverlapSize        int     // target trailing overlap copied between chunks
	StructuredMaxSize  int     // sub-limit for header/list-only buffers
	TitleMaxLength     int     // truncation bound for derived titles
	TailMergeTolerance float64 // max growth factor when absorbing a short tail
}

func DefaultConfig() Config {
	return Config{
		MaxChunkSize:       1200,
		MinChunkSize:       400,
		OverlapSize:        200,
		StructuredMaxSize:  600,
		TitleMaxLength:     100,
		TailMergeTolerance: 1.1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxChunkSize <= 0:
		return fmt.Errorf("%w: max_chunk_size must be positive", ErrInvalidConfig)
	case c.MinChunkSize <= 0:
		return fmt.Errorf("%w: min_chunk_size must be positive", ErrInvalidConfig)
	case c.MinChunkSize >= c.MaxChunkSize:
		return fmt.Errorf("%w: min_chunk_size %d must be below max_chunk_size %d",
			ErrInvalidConfig, c.MinChunkSize, c.MaxChunkSize)
	case c.OverlapSize < 0 || c.OverlapSize >= c.MinChunkSize:
		return fmt.Errorf("%w: overlap_size %d must be below min_chunk_size %d",
			ErrInvalidConfig, c.OverlapSize, c.MinChunkSize)
	case c.StructuredMaxSize < 0 || c.StructuredMaxSize > c.MaxChunkSize:
		return fmt.Errorf("%w: structured_max_size %d must not exceed max_chunk_size %d",
			ErrInvalidConfig, c.StructuredMaxSize, c.MaxChunkSize)
	case c.TailMergeTolerance < 1.0:
		return fmt.Errorf("%w: tail_merge_tolerance must be >= 1.0", ErrInvalidConfig)
	}
	return nil
}

// Metadata travels with every chunk into the vector store.
type Metadata struct {
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	SectionTitle string    `json:"section_title,omitempty"`
	SectionIndex int       `json:"section_index"`
	TotalChunks  int       `json:"total_chunks"`
	CharStart    int       `json:"char_start"`
	CharEnd      int       `json:"char_end"`
	ContentType  string    `json:"content_type"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// Chunk is the embeddable unit persisted downstream. Chunks are created
// once per processing pass and never mutated; re-processing a document
// supersedes them (the caller deletes prior chunks for the same source).
type Chunk struct {
	Content    string   `json:"content"`
	ChunkIndex int      `json:"chunk_index"`
	Metadata   Metadata `json:"metadata"`
}

// ProcessDocument runs the full pipeline over one document: parse into
// sections, derive the title, chunk each section, then flatten and number
// the results. Empty input produces an empty slice, not an error.
func ProcessDocument(raw, sourceID string, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sections := Parse(raw)
	title := ExtractTitle(raw, sourceID, cfg.TitleMaxLength)
	now := time.Now().UTC()

	var chunks []Chunk
	for _, sec := range sections {
		for i, p := range chunkSection(sec, cfg) {
			chunks = append(chunks, Chunk{
				Content:    p.content,
				ChunkIndex: len(chunks),
				Metadata: Metadata{
					Title:        title,
					Source:       sourceID,
					SectionTitle: sec.Title,
					SectionIndex: i,
					CharStart:    p.start,
					CharEnd:      p.end,
					ContentType:  p.contentType,
					IngestedAt:   now,
				},
			})
		}
	}
	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks, nil
}

// ExtractTitle derives a document title: the first header's text if the
// document opens with one, otherwise the first meaningful line (not a list
// item or fence marker) truncated to maxLen, otherwise the source
// identifier.
func ExtractTitle(raw, sourceID string, maxLen int) string {
	lines := strings.Split(raw, "\n")
	var prev string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := atxHeaderRe.FindStringSubmatch(trimmed); m != nil {
			if t := strings.TrimSpace(m[2]); t != "" {
				return truncateTitle(t, maxLen)
			}
			prev = trimmed
			continue
		}

		// Setext: a candidate line underlined by = or - on the next line.
		if prev == "" && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && setextRe.MatchString(next) &&
				!listItemRe.MatchString(line) && !isFenceMarker(trimmed) {
				return truncateTitle(trimmed, maxLen)
			}
		}

		if listItemRe.MatchString(line) || isFenceMarker(trimmed) {
			prev = trimmed
			continue
		}
		return truncateTitle(trimmed, maxLen)
	}
	return sourceID
}

func isFenceMarker(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func truncateTitle(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRightFunc(string(runes[:maxLen]), unicode.IsSpace)
}
