package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessDocumentSimple(t *testing.T) {
	chunks, err := ProcessDocument("# Title\n\nShort paragraph.", "doc.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "Short paragraph.", chunks[0].Content)
	require.Equal(t, 0, chunks[0].ChunkIndex)
	require.Equal(t, "Title", chunks[0].Metadata.Title)
	require.Equal(t, "doc.md", chunks[0].Metadata.Source)
	require.Equal(t, "Title", chunks[0].Metadata.SectionTitle)
	require.Equal(t, ContentTypeProse, chunks[0].Metadata.ContentType)
	require.False(t, chunks[0].Metadata.IngestedAt.IsZero())
}

func TestProcessDocumentEmpty(t *testing.T) {
	chunks, err := ProcessDocument("", "empty.md", DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, chunks)

	chunks, err = ProcessDocument("   \n\t\n", "blank.md", DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestProcessDocumentInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max", func(c *Config) { c.MaxChunkSize = 0 }},
		{"zero min", func(c *Config) { c.MinChunkSize = 0 }},
		{"min above max", func(c *Config) { c.MinChunkSize = c.MaxChunkSize + 1 }},
		{"min equals max", func(c *Config) { c.MinChunkSize = c.MaxChunkSize }},
		{"overlap above min", func(c *Config) { c.OverlapSize = c.MinChunkSize }},
		{"structured above max", func(c *Config) { c.StructuredMaxSize = c.MaxChunkSize + 1 }},
		{"tolerance below one", func(c *Config) { c.TailMergeTolerance = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := ProcessDocument("some text", "x.md", cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestProcessDocumentBoundarySparseKeepsMaxSize(t *testing.T) {
	cfg := DefaultConfig()
	// Long unbroken runs leave no sentence or block boundary near the
	// overlap target, so seeding must give up rather than blow the limit.
	doc := "Ab\n" + strings.Repeat("x", 880) + "\n\n" +
		strings.Repeat("y", 1100) + "\n\n" + proseDocument(8)
	chunks, err := ProcessDocument(doc, "sparse.txt", cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)

	for i, c := range chunks {
		if c.Metadata.ContentType == ContentTypeOversizedAtom {
			continue
		}
		limit := cfg.MaxChunkSize
		if i == len(chunks)-1 {
			limit = int(float64(cfg.MaxChunkSize) * cfg.TailMergeTolerance)
		}
		require.LessOrEqual(t, len(c.Content), limit, "chunk %d", i)
	}
}

func TestProcessDocumentOrdering(t *testing.T) {
	doc := "# A\n\n" + proseDocument(42) + "\n\n# B\n\n" + proseDocument(42)
	chunks, err := ProcessDocument(doc, "ordered.md", DefaultConfig())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 3)

	for i, c := range chunks {
		require.Equal(t, i, c.ChunkIndex, "chunk_index must be a contiguous 0-based sequence")
		require.Equal(t, len(chunks), c.Metadata.TotalChunks)
	}
}

func TestProcessDocumentIdempotent(t *testing.T) {
	doc := "# Stable\n\n" + proseDocument(42)
	cfg := DefaultConfig()

	first, err := ProcessDocument(doc, "same.md", cfg)
	require.NoError(t, err)
	second, err := ProcessDocument(doc, "same.md", cfg)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Content, second[i].Content)
		require.Equal(t, first[i].ChunkIndex, second[i].ChunkIndex)
		require.Equal(t, first[i].Metadata.CharStart, second[i].Metadata.CharStart)
		require.Equal(t, first[i].Metadata.CharEnd, second[i].Metadata.CharEnd)
	}
}

func TestProcessDocumentNoCrossSectionOverlap(t *testing.T) {
	alpha := strings.Repeat("Alpha section prose keeps going with more detail every time. ", 40)
	beta := strings.Repeat("Beta section takes a different angle on the same story. ", 40)
	doc := "# First\n\n" + strings.TrimSpace(alpha) + "\n\n# Second\n\n" + strings.TrimSpace(beta)

	chunks, err := ProcessDocument(doc, "two-sections.md", DefaultConfig())
	require.NoError(t, err)

	var sawSecond bool
	for _, c := range chunks {
		if c.Metadata.SectionTitle == "Second" && c.Metadata.SectionIndex == 0 {
			sawSecond = true
			require.True(t, strings.HasPrefix(c.Content, "Beta"),
				"a section's first chunk must start overlap-free")
		}
	}
	require.True(t, sawSecond)
}

func TestProcessDocumentCoverage(t *testing.T) {
	// Headerless prose: overlap only duplicates, nothing is dropped.
	doc := proseDocument(42)
	chunks, err := ProcessDocument(doc, "prose.md", DefaultConfig())
	require.NoError(t, err)

	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	require.GreaterOrEqual(t, total, len(doc))
}

func TestProcessDocumentOversizedAtomicMetadata(t *testing.T) {
	fence := "```\n" + strings.Repeat("line of code here\n", 90) + "```"
	require.Greater(t, len(fence), DefaultConfig().MaxChunkSize)

	chunks, err := ProcessDocument(fence, "code.md", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, fence, chunks[0].Content)
	require.Equal(t, ContentTypeOversizedAtom, chunks[0].Metadata.ContentType)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		sourceID string
		want     string
	}{
		{"atx header", "# My Document\n\nbody", "f.md", "My Document"},
		{"setext header", "Underlined Title\n=====\n\nbody", "f.md", "Underlined Title"},
		{"first meaningful line", "Just an opening line here\nmore text", "f.md", "Just an opening line here"},
		{"skips list items", "- bullet one\n- bullet two\n\nReal opening line", "f.md", "Real opening line"},
		{"skips fence markers", "```\ncode\n```", "f.md", "code"},
		{"falls back to source id", "- a\n- b", "notes.md", "notes.md"},
		{"empty document", "", "empty.md", "empty.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractTitle(tt.raw, tt.sourceID, 100))
		})
	}
}

func TestExtractTitleTruncation(t *testing.T) {
	long := strings.Repeat("verylongword ", 20)
	got := ExtractTitle(long, "f.md", 25)
	require.LessOrEqual(t, len([]rune(got)), 25)
	require.NotEmpty(t, got)
	require.False(t, strings.HasSuffix(got, " "))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
