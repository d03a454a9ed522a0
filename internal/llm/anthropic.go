package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxToolRounds bounds the tool_use/tool_result loop so a model that keeps
// requesting tools cannot spin forever.
const maxToolRounds = 5

type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Models() []string {
	return []string{
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
		"claude-sonnet-4-20250514",
		"claude-opus-4-20250514",
	}
}

func buildParams(req ChatRequest) anthropic.MessageNewParams {
	var systemText string
	var msgs []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			systemText = m.Content
		case "user":
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = anthropic.Float(req.TopP)
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}
	return params
}

func (p *AnthropicProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	resp, err := p.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)

	return &ChatResponse{
		ID:           string(resp.ID),
		Provider:     "anthropic",
		Model:        string(resp.Model),
		Content:      content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// ChatWithTools runs the full tool-use conversation: offer the tools, execute
// every tool_use block through exec, feed tool_result blocks back, and repeat
// until the model stops asking for tools.
func (p *AnthropicProvider) ChatWithTools(ctx context.Context, req ChatRequest, tools []Tool, exec ToolExecutor) (*ChatResponse, error) {
	start := time.Now()

	params := buildParams(req)
	toolParams := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		toolParams[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: t.InputSchema,
					Required:   t.Required,
				},
			},
		}
	}
	params.Tools = toolParams

	var (
		toolsUsed    []string
		inputTokens  int
		outputTokens int
		finalText    string
		resp         *anthropic.Message
		err          error
	)

	for round := 0; round < maxToolRounds; round++ {
		resp, err = p.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic tool chat: %w", err)
		}
		inputTokens += int(resp.Usage.InputTokens)
		outputTokens += int(resp.Usage.OutputTokens)

		var toolResults []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				finalText = variant.Text
			case anthropic.ToolUseBlock:
				input := []byte(variant.JSON.Input.Raw())
				slog.Info("tool requested",
					"tool", variant.Name,
					"input", marshalToolInput(input),
				)
				result, execErr := exec.Execute(ctx, variant.Name, input)
				if execErr != nil {
					result = fmt.Sprintf("tool error: %s", execErr)
				}
				toolsUsed = append(toolsUsed, variant.Name)
				toolResults = append(toolResults,
					anthropic.NewToolResultBlock(variant.ID, result, execErr != nil))
			}
		}

		if len(toolResults) == 0 || resp.StopReason != "tool_use" {
			break
		}

		params.Messages = append(params.Messages, resp.ToParam())
		params.Messages = append(params.Messages, anthropic.NewUserMessage(toolResults...))
	}

	if resp.StopReason == "tool_use" {
		// Tool budget spent with the model still asking for more. Request a
		// closing answer with further tool use disabled; the tool definitions
		// stay in the request because the transcript references them.
		slog.Warn("tool rounds exhausted, forcing final answer", "rounds", maxToolRounds)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
		resp, err = p.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic final answer: %w", err)
		}
		inputTokens += int(resp.Usage.InputTokens)
		outputTokens += int(resp.Usage.OutputTokens)
		for _, block := range resp.Content {
			if text, ok := block.AsAny().(anthropic.TextBlock); ok {
				finalText = text.Text
			}
		}
	}

	return &ChatResponse{
		ID:           string(resp.ID),
		Provider:     "anthropic",
		Model:        string(resp.Model),
		Content:      finalText,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
		ToolsUsed:    toolsUsed,
	}, nil
}

func (p *AnthropicProvider) ChatCompletionStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, buildParams(req))

	ch := make(chan StreamChunk, 64)
	go func() {
		defer close(ch)
		defer stream.Close()

		accum := anthropic.Message{}
		for stream.Next() {
			evt := stream.Current()
			accum.Accumulate(evt)

			switch evt.Type {
			case "content_block_delta":
				if evt.Delta.Type == "text_delta" {
					ch <- StreamChunk{Content: evt.Delta.Text}
				}
			case "message_stop":
				ch <- StreamChunk{
					Done:         true,
					InputTokens:  int(accum.Usage.InputTokens),
					OutputTokens: int(accum.Usage.OutputTokens),
				}
				return
			}
		}
		if err := stream.Err(); err != nil {
			ch <- StreamChunk{Error: err, Done: true}
		}
	}()

	return ch, nil
}

func (p *AnthropicProvider) GenerateEmbedding(_ context.Context, _ EmbeddingRequest) (*EmbeddingResponse, error) {
	return nil, fmt.Errorf("anthropic does not provide an embedding API, use the openai provider")
}
