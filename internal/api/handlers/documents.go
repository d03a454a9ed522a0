package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avazquez/docquery/internal/document"
	"github.com/avazquez/docquery/internal/queue"
	"github.com/avazquez/docquery/pkg/textextract"
)

type DocumentHandler struct {
	svc         *document.Service
	queueClient *queue.Client
}

func NewDocumentHandler(svc *document.Service, qc *queue.Client) *DocumentHandler {
	return &DocumentHandler{svc: svc, queueClient: qc}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	fileType := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedType(fileType) {
		writeJSON(w, http.StatusUnsupportedMediaType,
			map[string]interface{}{"error": "unsupported file type", "supported": textextract.SupportedTypes()})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read file"})
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	doc, err := h.svc.Create(r.Context(), document.CreateRequest{
		Title:    title,
		Source:   header.Filename,
		FileType: fileType,
		RawData:  data,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.queueClient.EnqueueDocumentProcess(queue.DocumentProcessPayload{
		DocumentID: doc.ID.String(),
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to schedule processing"})
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	docs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document ID"})
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          doc.ID.String(),
		"status":      doc.Status,
		"chunk_count": doc.ChunkCount,
	})
}

func supportedType(ext string) bool {
	for _, t := range textextract.SupportedTypes() {
		if t == ext {
			return true
		}
	}
	return false
}
