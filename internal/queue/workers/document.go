package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/avazquez/docquery/internal/document"
	"github.com/avazquez/docquery/internal/models"
	"github.com/avazquez/docquery/internal/queue"
)

// DocumentWorker extracts text from uploaded bytes and hands the result to
// the ingest stage.
type DocumentWorker struct {
	docSvc      *document.Service
	extractor   document.TextExtractor
	queueClient *queue.Client
}

func NewDocumentWorker(docSvc *document.Service, qc *queue.Client) *DocumentWorker {
	return &DocumentWorker{
		docSvc:      docSvc,
		extractor:   document.NewTextExtractor(),
		queueClient: qc,
	}
}

func (w *DocumentWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	slog.Info("processing document", "document_id", docID)

	if err := w.docSvc.UpdateStatus(ctx, docID, models.DocStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	data, fileType, err := w.docSvc.RawData(ctx, docID)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("load raw data: %w", err)
	}

	readerAt := document.ReaderAtFromBytes(data)
	extracted, err := w.extractor.Extract(ctx, readerAt, int64(len(data)), fileType)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("extract text: %w", err)
	}

	if err := w.docSvc.SetExtractedText(ctx, docID, extracted.Content); err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("store extracted text: %w", err)
	}

	if err := w.queueClient.EnqueueDocumentIngest(queue.DocumentIngestPayload{
		DocumentID: docID.String(),
	}); err != nil {
		return fmt.Errorf("enqueue ingest: %w", err)
	}

	slog.Info("document text extracted",
		"document_id", docID, "chars", len(extracted.Content), "pages", extracted.Pages)
	return nil
}
