package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avazquez/docquery/internal/rag"
	"github.com/avazquez/docquery/internal/vectorstore"
)

type fakePipeline struct {
	queryResp  *rag.QueryResponse
	queryErr   error
	searchResp []vectorstore.SearchResult
	lastQuery  rag.QueryRequest
}

func (f *fakePipeline) Ingest(ctx context.Context, req rag.IngestRequest) (int, error) {
	return 0, nil
}

func (f *fakePipeline) Query(ctx context.Context, req rag.QueryRequest) (*rag.QueryResponse, error) {
	f.lastQuery = req
	return f.queryResp, f.queryErr
}

func (f *fakePipeline) Search(ctx context.Context, req rag.SearchRequest) ([]vectorstore.SearchResult, error) {
	return f.searchResp, nil
}

func TestChatAnswersQuery(t *testing.T) {
	p := &fakePipeline{queryResp: &rag.QueryResponse{
		Answer:    "Based on the available documents, yes.",
		QueryType: rag.QueryFactual,
		Sources:   []string{"guide.md"},
	}}
	h := NewChatHandler(p, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"query":"When was it released?"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "When was it released?", p.lastQuery.Query)

	var resp rag.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Based on the available documents, yes.", resp.Answer)
	assert.Equal(t, []string{"guide.md"}, resp.Sources)
}

func TestChatRejectsEmptyQuery(t *testing.T) {
	h := NewChatHandler(&fakePipeline{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsBadBody(t *testing.T) {
	h := NewChatHandler(&fakePipeline{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatReportsPipelineFailure(t *testing.T) {
	p := &fakePipeline{queryErr: errors.New("provider unavailable")}
	h := NewChatHandler(p, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"query":"anything"}`))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnswerCacheKeyDistinguishesRequests(t *testing.T) {
	a := answerCacheKey(rag.QueryRequest{Query: "what is X"})
	b := answerCacheKey(rag.QueryRequest{Query: "what is Y"})
	c := answerCacheKey(rag.QueryRequest{Query: "what is X", TopK: 3})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, answerCacheKey(rag.QueryRequest{Query: "what is X"}))
	assert.True(t, strings.HasPrefix(a, "chat:answer:"))
}

func TestRAGSearchReturnsResults(t *testing.T) {
	p := &fakePipeline{searchResp: []vectorstore.SearchResult{
		{Source: "guide.md", Content: "chunk text", Score: 0.81},
	}}
	h := NewRAGHandler(p)

	req := httptest.NewRequest(http.MethodPost, "/rag/search",
		strings.NewReader(`{"query":"chunking"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int                        `json:"count"`
		Results []vectorstore.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "guide.md", resp.Results[0].Source)
}
