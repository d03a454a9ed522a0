package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Source        string          `json:"source" db:"source"`
	Title         string          `json:"title" db:"title"`
	FileType      string          `json:"file_type,omitempty" db:"file_type"`
	FileSizeBytes int64           `json:"file_size_bytes,omitempty" db:"file_size_bytes"`
	Status        string          `json:"status" db:"status"`
	ChunkCount    int             `json:"chunk_count" db:"chunk_count"`
	Metadata      json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)
