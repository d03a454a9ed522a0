package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avazquez/docquery/internal/cache"
	"github.com/avazquez/docquery/internal/rag"
)

const answerCacheTTL = 10 * time.Minute

// ChatHandler answers questions over the ingested corpus. Identical requests
// are served from cache for a short window.
type ChatHandler struct {
	pipeline rag.Pipeline
	cache    *cache.Cache
}

func NewChatHandler(p rag.Pipeline, c *cache.Cache) *ChatHandler {
	return &ChatHandler{pipeline: p, cache: c}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req rag.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	key := answerCacheKey(req)
	if h.cache != nil {
		var cached rag.QueryResponse
		if err := h.cache.Get(r.Context(), key, &cached); err == nil {
			w.Header().Set("X-Cache", "hit")
			writeJSON(w, http.StatusOK, &cached)
			return
		}
	}

	resp, err := h.pipeline.Query(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if h.cache != nil {
		// Best effort; a failed cache write never fails the request.
		_ = h.cache.Set(r.Context(), key, resp, answerCacheTTL)
	}

	writeJSON(w, http.StatusOK, resp)
}

func answerCacheKey(req rag.QueryRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%.3f|%t|%s|%s",
		req.Query, req.TopK, req.MinScore, req.Hybrid, req.Model, req.Provider)))
	return "chat:answer:" + hex.EncodeToString(sum[:16])
}
