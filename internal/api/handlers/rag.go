package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avazquez/docquery/internal/rag"
)

type RAGHandler struct {
	pipeline rag.Pipeline
}

func NewRAGHandler(p rag.Pipeline) *RAGHandler {
	return &RAGHandler{pipeline: p}
}

func (h *RAGHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req rag.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	resp, err := h.pipeline.Query(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *RAGHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req rag.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	results, err := h.pipeline.Search(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}
