package textextract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, content, fileType string) *ExtractedText {
	t.Helper()
	r := bytes.NewReader([]byte(content))
	out, err := Extract(r, int64(len(content)), fileType)
	require.NoError(t, err)
	return out
}

func TestExtractTXT(t *testing.T) {
	out := extract(t, "  hello world\nsecond line\n", ".txt")
	require.Equal(t, "hello world\nsecond line", out.Content)
	require.Equal(t, "txt", out.Metadata["type"])
}

func TestExtractMarkdownPassthrough(t *testing.T) {
	md := "# Title\n\n- item one\n- item two"
	out := extract(t, md, ".md")
	require.Equal(t, md, out.Content)
}

func TestExtractCSV(t *testing.T) {
	out := extract(t, "name,age,city\nAlice,30,Berlin\nBob,4,Quito\n", ".csv")

	require.Equal(t, "csv", out.Metadata["type"])
	require.Equal(t, "2", out.Metadata["row_count"])
	require.Equal(t, "3", out.Metadata["column_count"])
	require.Equal(t, "name,age,city", out.Metadata["columns"])

	lines := strings.Split(out.Content, "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "name")
	require.Contains(t, lines[1], "Alice")

	// Columns align: every field starts at the same offset on each line.
	require.Equal(t, strings.Index(lines[0], "city"), strings.Index(lines[1], "Berlin"))
}

func TestExtractCSVEmpty(t *testing.T) {
	out := extract(t, "", ".csv")
	require.Empty(t, out.Content)
}

func TestExtractUnsupportedType(t *testing.T) {
	r := bytes.NewReader([]byte("data"))
	_, err := Extract(r, 4, ".exe")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file type")
}

func TestSupportedTypes(t *testing.T) {
	types := SupportedTypes()
	require.Contains(t, types, ".pdf")
	require.Contains(t, types, ".csv")
	require.Contains(t, types, ".md")
}

func TestStripXMLTags(t *testing.T) {
	got := stripXMLTags("<w:p><w:t>Hello</w:t><w:t>world</w:t></w:p>")
	require.Equal(t, "Hello world", got)
}
