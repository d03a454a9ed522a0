// Package textextract turns uploaded files into plain text ready for
// chunking. Markdown and plain text pass through untouched so the chunker
// sees the original structure.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	Content  string
	Pages    int
	Metadata map[string]string
}

func Extract(data io.ReaderAt, size int64, fileType string) (*ExtractedText, error) {
	switch strings.ToLower(fileType) {
	case ".pdf", "pdf", "application/pdf":
		return extractPDF(data, size)
	case ".docx", "docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return extractDOCX(data, size)
	case ".csv", "csv", "text/csv":
		return extractCSV(data, size)
	case ".txt", "txt", "text/plain", ".md", "md", "text/markdown":
		return extractTXT(data, size)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".csv", ".txt", ".md"}
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   numPages,
		Metadata: map[string]string{
			"type": "pdf",
		},
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	var buf strings.Builder
	for _, f := range reader.File {
		if filepath.Base(f.Name) == "document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document.xml: %w", err)
			}
			defer rc.Close()

			content, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("read document.xml: %w", err)
			}

			buf.WriteString(stripXMLTags(string(content)))
			break
		}
	}

	return &ExtractedText{
		Content: buf.String(),
		Pages:   1,
		Metadata: map[string]string{
			"type": "docx",
		},
	}, nil
}

// extractCSV renders the file as a column-aligned text table: the header row,
// then every record, padded so columns line up for the model.
func extractCSV(data io.ReaderAt, size int64) (*ExtractedText, error) {
	raw := make([]byte, size)
	if _, err := data.ReadAt(raw, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return &ExtractedText{Content: "", Pages: 1, Metadata: map[string]string{"type": "csv"}}, nil
	}

	widths := columnWidths(records)
	var buf strings.Builder
	for _, rec := range records {
		for i, field := range rec {
			if i > 0 {
				buf.WriteString("  ")
			}
			buf.WriteString(field)
			if pad := widths[i] - len(field); pad > 0 && i < len(rec)-1 {
				buf.WriteString(strings.Repeat(" ", pad))
			}
		}
		buf.WriteString("\n")
	}

	columns := len(records[0])
	return &ExtractedText{
		Content: strings.TrimRight(buf.String(), "\n"),
		Pages:   1,
		Metadata: map[string]string{
			"type":         "csv",
			"row_count":    strconv.Itoa(len(records) - 1),
			"column_count": strconv.Itoa(columns),
			"columns":      strings.Join(records[0], ","),
		},
	}, nil
}

func columnWidths(records [][]string) []int {
	var widths []int
	for _, rec := range records {
		for i, field := range rec {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(field) > widths[i] {
				widths[i] = len(field)
			}
		}
	}
	return widths
}

func extractTXT(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}

	return &ExtractedText{
		Content: string(bytes.TrimSpace(buf)),
		Pages:   1,
		Metadata: map[string]string{
			"type": "txt",
		},
	}, nil
}

func stripXMLTags(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}
	// Collapse whitespace
	text := result.String()
	parts := strings.Fields(text)
	return strings.Join(parts, " ")
}
