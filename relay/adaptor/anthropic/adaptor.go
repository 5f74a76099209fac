// Package anthropic implements the Adaptor for the Claude Messages API
// wire protocol (spec.md §4.1).
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func init() {
	adaptor.Register(adaptor.SpecAnthropic, &Adaptor{})
}

const anthropicVersion = "2023-06-01"

// defaultMaxTokens is used when the caller omits max_tokens; Claude requires
// the field on every request (spec.md §4.1).
const defaultMaxTokens = 4096

type Adaptor struct{}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model         string        `json:"model"`
	System        string        `json:"system,omitempty"`
	Messages      []wireMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   *float64      `json:"temperature,omitempty"`
	TopP          *float64      `json:"top_p,omitempty"`
	TopK          *int          `json:"top_k,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Stream        bool          `json:"stream,omitempty"`
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	var systemParts []string
	var messages []wireMessage
	for _, m := range req.Messages {
		if m.Role == "system" {
			systemParts = append(systemParts, m.Content)
			continue
		}
		messages = append(messages, wireMessage{Role: m.Role, Content: m.Content})
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	wr := wireRequest{
		Model:       modelName,
		System:      strings.Join(systemParts, "\n"),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		TopK:        req.TopK,
		Stream:      req.Stream,
	}
	if req.Stop != nil {
		wr.StopSequences = req.Stop.Values
	}

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal anthropic request")
	}

	url := adaptor.JoinURL(apiBase, adaptor.ResolvePath(adaptor.SpecAnthropic, apiPath, "/v1/messages"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new anthropic request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	return httpReq, nil
}

type wireResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read anthropic response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal anthropic response")
	}

	var text strings.Builder
	for _, block := range wr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &rmodel.StandardResponse{
		ID:      wr.ID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   wr.Model,
		Choices: []rmodel.Choice{{
			Index:        0,
			Message:      rmodel.Message{Role: "assistant", Content: text.String()},
			FinishReason: wr.StopReason,
		}},
		Usage: rmodel.Usage{
			PromptTokens:     wr.Usage.InputTokens,
			CompletionTokens: wr.Usage.OutputTokens,
			TotalTokens:      wr.Usage.InputTokens + wr.Usage.OutputTokens,
		},
	}, nil
}

func (a *Adaptor) ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error) {
	s := strings.TrimSpace(string(line))
	if !strings.HasPrefix(s, "data:") {
		return nil, nil
	}
	payload := strings.TrimSpace(strings.TrimPrefix(s, "data:"))
	if payload == "[DONE]" {
		return nil, nil
	}

	var evt struct {
		Type  string `json:"type"`
		Delta struct {
			Text         string `json:"text"`
			StopReason   string `json:"stop_reason"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return nil, nil
	}
	if evt.Type != "content_block_delta" && evt.Type != "message_delta" {
		return nil, nil
	}

	chunk := &rmodel.StreamChunk{
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Choices: []rmodel.ChunkChoice{{
			Index: 0,
			Delta: map[string]any{"content": evt.Delta.Text},
		}},
	}
	if evt.Delta.StopReason != "" {
		reason := evt.Delta.StopReason
		chunk.Choices[0].FinishReason = &reason
	}
	return []*rmodel.StreamChunk{chunk}, nil
}

func (a *Adaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	if modelName == "" {
		modelName = adaptor.TestModelFallback(adaptor.SpecAnthropic, config.ClaudeTestModel)
	}
	maxTokens := 10
	return &rmodel.StandardRequest{
		Model:     modelName,
		Messages:  []rmodel.Message{{Role: "user", Content: "Hi"}},
		MaxTokens: &maxTokens,
	}
}
