package llm

import (
	"context"
	"encoding/json"
)

// Provider abstracts an LLM provider (Anthropic, OpenAI).
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Name() string
	Models() []string
}

// ToolCaller is implemented by providers that support server-side tool use.
type ToolCaller interface {
	ChatWithTools(ctx context.Context, req ChatRequest, tools []Tool, exec ToolExecutor) (*ChatResponse, error)
}

// Gateway provides multi-provider routing with fallback and retry.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	ChatWithTools(ctx context.Context, req ChatRequest, tools []Tool, exec ToolExecutor) (*ChatResponse, error)
	ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
	Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
	Provider(name string) (Provider, error)
	ListModels() []ModelInfo
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Tool describes one callable tool offered to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
	Required    []string       `json:"required,omitempty"`
}

// ToolExecutor runs a named tool against its JSON input and returns the
// textual result handed back to the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// ChatRequest is the input for chat completions.
type ChatRequest struct {
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// ChatResponse is the output from chat completions.
type ChatResponse struct {
	ID           string   `json:"id"`
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	Content      string   `json:"content"`
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	TotalTokens  int      `json:"total_tokens"`
	LatencyMs    int64    `json:"latency_ms"`
	ToolsUsed    []string `json:"tools_used,omitempty"`
}

// StreamChunk is a single chunk from a streaming response.
type StreamChunk struct {
	Content      string `json:"content,omitempty"`
	Done         bool   `json:"done"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	Error        error  `json:"-"`
}

// EmbeddingRequest is the input for embedding generation.
type EmbeddingRequest struct {
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model"`
	Input    []string `json:"input"`
}

// EmbeddingResponse is the output from embedding generation.
type EmbeddingResponse struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
	Tokens     int         `json:"tokens"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Type     string `json:"type"` // chat, embedding
}
