package document

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/avazquez/docquery/pkg/textextract"
)

type TextExtractor interface {
	Extract(ctx context.Context, data io.ReaderAt, size int64, fileType string) (*textextract.ExtractedText, error)
	SupportedTypes() []string
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return extractor{}
}

func (extractor) Extract(_ context.Context, data io.ReaderAt, size int64, fileType string) (*textextract.ExtractedText, error) {
	result, err := textextract.Extract(data, size, fileType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	return result, nil
}

func (extractor) SupportedTypes() []string {
	return textextract.SupportedTypes()
}

// ReaderAtFromBytes creates an io.ReaderAt from a byte slice.
func ReaderAtFromBytes(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}
