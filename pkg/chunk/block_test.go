package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKinds []BlockKind
	}{
		{
			name:      "paragraph only",
			input:     "Just a line of text.",
			wantKinds: []BlockKind{BlockParagraph},
		},
		{
			name:      "multiline paragraph is one block",
			input:     "First line\nsecond line\nthird line",
			wantKinds: []BlockKind{BlockParagraph},
		},
		{
			name:      "blank lines separate paragraphs",
			input:     "First para.\n\nSecond para.",
			wantKinds: []BlockKind{BlockParagraph, BlockParagraph},
		},
		{
			name:      "unordered list items",
			input:     "- one\n- two\n* three\n+ four",
			wantKinds: []BlockKind{BlockListItem, BlockListItem, BlockListItem, BlockListItem},
		},
		{
			name:      "ordered list items",
			input:     "1. first\n2. second",
			wantKinds: []BlockKind{BlockListItem, BlockListItem},
		},
		{
			name:      "dash without trailing space is not a list",
			input:     "-dashword",
			wantKinds: []BlockKind{BlockParagraph},
		},
		{
			name:      "fenced code keeps everything inside",
			input:     "```\n# not a header\n- not a list\n```",
			wantKinds: []BlockKind{BlockCodeFence},
		},
		{
			name:      "tilde fence",
			input:     "~~~\ncode\n~~~",
			wantKinds: []BlockKind{BlockCodeFence},
		},
		{
			name:      "indented code outside lists",
			input:     "    x := 1\n    y := 2",
			wantKinds: []BlockKind{BlockCodeFence},
		},
		{
			name:      "indented continuation stays with list item",
			input:     "- item one\n    wrapped detail",
			wantKinds: []BlockKind{BlockListItem},
		},
		{
			name:      "sub-header is a block within its section",
			input:     "# Top\n\npara\n\n## Sub\n\nmore",
			wantKinds: []BlockKind{BlockParagraph, BlockHeader, BlockParagraph},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := Parse(tt.input)
			var kinds []BlockKind
			for _, sec := range sections {
				for _, b := range sec.Blocks {
					kinds = append(kinds, b.Kind)
				}
			}
			require.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	sections := Parse("### Deep Title\n\nbody")
	require.Len(t, sections, 1)
	require.Equal(t, "Deep Title", sections[0].Title)
	require.Equal(t, 3, sections[0].Level)
}

func TestParseSetextHeaders(t *testing.T) {
	sections := Parse("Main Title\n==========\n\nbody\n\nSubtitle\n--------\n\nmore")
	require.Len(t, sections, 1, "level-2 setext stays inside the level-1 section")
	require.Equal(t, "Main Title", sections[0].Title)
	require.Equal(t, 1, sections[0].Level)

	// The subtitle shows up as a header block inside the section.
	var headers []string
	for _, b := range sections[0].Blocks {
		if b.Kind == BlockHeader {
			headers = append(headers, b.Text)
			require.Equal(t, 2, b.Level)
		}
	}
	require.Equal(t, []string{"Subtitle"}, headers)
}

func TestParseSectionBoundaries(t *testing.T) {
	input := "preamble text\n\n# One\n\nalpha\n\n## One point one\n\nbeta\n\n# Two\n\ngamma"
	sections := Parse(input)
	require.Len(t, sections, 3)

	require.Equal(t, "", sections[0].Title, "content before first header is an untitled preamble")
	require.Equal(t, "One", sections[1].Title)
	require.Equal(t, "Two", sections[2].Title)

	// Section One holds its paragraph, the sub-header, and the sub-header's text.
	require.Len(t, sections[1].Blocks, 3)
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\n", " \t \n "} {
		sections := Parse(input)
		require.Len(t, sections, 1)
		require.Empty(t, sections[0].Blocks)
	}
}

func TestParseCodeFenceVerbatim(t *testing.T) {
	fence := "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```"
	sections := Parse(fence)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Blocks, 1)
	require.Equal(t, fence, sections[0].Blocks[0].Text)
}

func TestParseUnterminatedFence(t *testing.T) {
	sections := Parse("```\ndangling code")
	require.Len(t, sections[0].Blocks, 1)
	require.Equal(t, BlockCodeFence, sections[0].Blocks[0].Kind)
}

func TestParseBlockOffsets(t *testing.T) {
	input := "# Head\n\nfirst para\n\nsecond para"
	sections := Parse(input)
	require.Len(t, sections, 1)
	blocks := sections[0].Blocks
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		require.Equal(t, b.Text, input[b.Start:b.Start+len(b.Text)],
			"block offset must point at its own text")
	}
}

func TestParseAmbiguousFallsThroughToParagraph(t *testing.T) {
	// Seven hashes, hash without text separation: none of these are headers.
	for _, input := range []string{"####### too deep", "#hashtag"} {
		sections := Parse(input)
		require.Len(t, sections[0].Blocks, 1)
		require.Equal(t, BlockParagraph, sections[0].Blocks[0].Kind, input)
	}
}

func TestBlockKindString(t *testing.T) {
	require.Equal(t, "header", BlockHeader.String())
	require.Equal(t, "list_item", BlockListItem.String())
	require.Equal(t, "code_fence", BlockCodeFence.String())
	require.Equal(t, "paragraph", BlockParagraph.String())
}

func TestParseOrderedFlag(t *testing.T) {
	sections := Parse("1. numbered\n- bullet")
	blocks := sections[0].Blocks
	require.Len(t, blocks, 2)
	require.True(t, blocks[0].Ordered)
	require.False(t, blocks[1].Ordered)
}

func TestParseLongDocumentStaysLinear(t *testing.T) {
	// Sanity: a large mixed document parses without losing content.
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("# Section\n\nSome body text for the section.\n\n- item\n\n")
	}
	sections := Parse(sb.String())
	require.Len(t, sections, 200)
}
