// Package qwen implements the Adaptor for Alibaba's DashScope (Qwen)
// official wire protocol (spec.md §4.1).
package qwen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func init() {
	adaptor.Register(adaptor.SpecQwen, &Adaptor{})
}

type Adaptor struct{}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireInput struct {
	Messages []wireMessage `json:"messages"`
}

type wireParameters struct {
	ResultFormat    string   `json:"result_format"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
}

type wireRequest struct {
	Model      string         `json:"model"`
	Input      wireInput      `json:"input"`
	Parameters wireParameters `json:"parameters"`
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	wr := wireRequest{
		Model: modelName,
		Parameters: wireParameters{
			ResultFormat:    "message",
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
			TopP:            req.TopP,
		},
	}
	for _, m := range req.Messages {
		wr.Input.Messages = append(wr.Input.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal qwen request")
	}

	url := adaptor.JoinURL(apiBase, adaptor.ResolvePath(adaptor.SpecQwen, apiPath, "/api/v1/services/aigc/text-generation/generation"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new qwen request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", adaptor.BearerHeader(apiKey))
	if req.Stream {
		httpReq.Header.Set("X-DashScope-SSE", "enable")
	}
	return httpReq, nil
}

type wireResponse struct {
	Output struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read qwen response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal qwen response")
	}

	out := &rmodel.StandardResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Usage: rmodel.Usage{
			PromptTokens:     wr.Usage.InputTokens,
			CompletionTokens: wr.Usage.OutputTokens,
			TotalTokens:      wr.Usage.TotalTokens,
		},
	}
	if len(wr.Output.Choices) > 0 {
		m := wr.Output.Choices[0].Message
		out.Choices = []rmodel.Choice{{
			Index:   0,
			Message: rmodel.Message{Role: m.Role, Content: m.Content},
		}}
	}
	return out, nil
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

	var wr wireResponse
	if err := json.Unmarshal([]byte(payload), &wr); err != nil {
		return nil, nil
	}
	if len(wr.Output.Choices) == 0 {
		return nil, nil
	}

	chunk := &rmodel.StreamChunk{
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Choices: []rmodel.ChunkChoice{{
			Index: 0,
			Delta: map[string]any{"content": wr.Output.Choices[0].Message.Content},
		}},
	}
	return []*rmodel.StreamChunk{chunk}, nil
}

func (a *Adaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	maxTokens := 10
	return &rmodel.StandardRequest{
		Model:     modelName,
		Messages:  []rmodel.Message{{Role: "user", Content: "Hi"}},
		MaxTokens: &maxTokens,
	}
}
