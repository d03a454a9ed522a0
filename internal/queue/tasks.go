package queue

const (
	// TypeDocumentProcess extracts text from a freshly uploaded document.
	TypeDocumentProcess = "document:process"
	// TypeDocumentIngest chunks, embeds, and stores the extracted text.
	TypeDocumentIngest = "document:ingest"
)

type DocumentProcessPayload struct {
	DocumentID string `json:"document_id"`
}

type DocumentIngestPayload struct {
	DocumentID string `json:"document_id"`
}
