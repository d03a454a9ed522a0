package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/avazquez/docquery/internal/document"
	"github.com/avazquez/docquery/internal/models"
	"github.com/avazquez/docquery/internal/queue"
	"github.com/avazquez/docquery/internal/rag"
)

// IngestWorker runs the chunk-embed-store pipeline over extracted text and
// settles the document's final status.
type IngestWorker struct {
	docSvc   *document.Service
	pipeline rag.Pipeline
}

func NewIngestWorker(docSvc *document.Service, pipeline rag.Pipeline) *IngestWorker {
	return &IngestWorker{docSvc: docSvc, pipeline: pipeline}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	text, source, err := w.docSvc.ExtractedText(ctx, docID)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("load extracted text: %w", err)
	}

	count, err := w.pipeline.Ingest(ctx, rag.IngestRequest{
		Source:  source,
		Content: text,
	})
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		if errors.Is(err, rag.ErrDocumentTooLarge) || errors.Is(err, rag.ErrEmptyDocument) {
			// Not retryable: the input will not shrink or grow on retry.
			slog.Warn("document rejected", "document_id", docID, "error", err)
			return nil
		}
		return fmt.Errorf("ingest document: %w", err)
	}

	if err := w.docSvc.SetChunkCount(ctx, docID, count); err != nil {
		return fmt.Errorf("record chunk count: %w", err)
	}
	if err := w.docSvc.UpdateStatus(ctx, docID, models.DocStatusReady); err != nil {
		return fmt.Errorf("update status to ready: %w", err)
	}

	slog.Info("document ingested", "document_id", docID, "chunks", count)
	return nil
}
