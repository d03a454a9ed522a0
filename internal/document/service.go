package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avazquez/docquery/internal/models"
	"github.com/avazquez/docquery/internal/vectorstore"
)

// Service owns the document lifecycle: raw upload, extracted text, status
// transitions, and cleanup of a document's vector-store chunks on delete.
type Service struct {
	db    *pgxpool.Pool
	store vectorstore.VectorStore
}

func NewService(db *pgxpool.Pool, store vectorstore.VectorStore) *Service {
	return &Service{db: db, store: store}
}

type CreateRequest struct {
	Title    string
	Source   string
	FileType string
	RawData  []byte
	Metadata map[string]interface{}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Document, error) {
	metadata, _ := json.Marshal(req.Metadata)

	var doc models.Document
	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, source, title, file_type, file_size_bytes, status, raw_data, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source) DO UPDATE
		 SET title = $3, file_type = $4, file_size_bytes = $5, status = $6, raw_data = $7, metadata = $8
		 RETURNING id, source, title, file_type, file_size_bytes, status, chunk_count, metadata, created_at`,
		uuid.New(), req.Source, req.Title, req.FileType, int64(len(req.RawData)),
		models.DocStatusPending, req.RawData, metadata,
	).Scan(&doc.ID, &doc.Source, &doc.Title, &doc.FileType, &doc.FileSizeBytes,
		&doc.Status, &doc.ChunkCount, &doc.Metadata, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return &doc, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT id, source, title, file_type, file_size_bytes, status, chunk_count, metadata, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Source, &doc.Title, &doc.FileType, &doc.FileSizeBytes,
		&doc.Status, &doc.ChunkCount, &doc.Metadata, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// RawData returns the uploaded bytes and file type for text extraction.
func (s *Service) RawData(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	var data []byte
	var fileType string
	err := s.db.QueryRow(ctx,
		"SELECT raw_data, file_type FROM documents WHERE id = $1", id,
	).Scan(&data, &fileType)
	if err != nil {
		return nil, "", fmt.Errorf("get raw data: %w", err)
	}
	return data, fileType, nil
}

// SetExtractedText stores the extraction result so the ingest worker can
// re-read it without touching the raw bytes again.
func (s *Service) SetExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE documents SET extracted_text = $1 WHERE id = $2", text, id)
	if err != nil {
		return fmt.Errorf("store extracted text: %w", err)
	}
	return nil
}

// ExtractedText returns the stored extraction plus the document's source id.
func (s *Service) ExtractedText(ctx context.Context, id uuid.UUID) (string, string, error) {
	var text, source string
	err := s.db.QueryRow(ctx,
		"SELECT COALESCE(extracted_text, ''), source FROM documents WHERE id = $1", id,
	).Scan(&text, &source)
	if err != nil {
		return "", "", fmt.Errorf("get extracted text: %w", err)
	}
	return text, source, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, source, title, file_type, file_size_bytes, status, chunk_count, metadata, created_at
		 FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Source, &d.Title, &d.FileType, &d.FileSizeBytes,
			&d.Status, &d.ChunkCount, &d.Metadata, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Delete removes the document row and its chunks from the vector store.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBySource(ctx, doc.Source); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	_, err = s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, "UPDATE documents SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Service) SetChunkCount(ctx context.Context, id uuid.UUID, count int) error {
	_, err := s.db.Exec(ctx, "UPDATE documents SET chunk_count = $1 WHERE id = $2", count, id)
	return err
}
