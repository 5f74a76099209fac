// Package openai implements the Adaptor for vendors speaking the OpenAI
// chat-completions wire protocol near-identically (spec.md §4.1).
package openai

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
	"github.com/Chyrain/LLMGateway/relay/upstream"
)

func init() {
	adaptor.Register(adaptor.SpecOpenAI, &Adaptor{})
}

type Adaptor struct{}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	wr := wireRequest{
		Model:       modelName,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stream:      req.Stream,
	}
	for _, m := range req.Messages {
		wr.Messages = append(wr.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	if req.Stop != nil {
		wr.Stop = req.Stop.Values
	}

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal openai request")
	}

	url := adaptor.JoinURL(apiBase, adaptor.ResolvePath(adaptor.SpecOpenAI, apiPath, "/v1/chat/completions"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new openai request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", adaptor.BearerHeader(apiKey))
	return httpReq, nil
}

type wireResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read openai response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal openai response")
	}

	out := &rmodel.StandardResponse{
		ID:      wr.ID,
		Object:  "chat.completion",
		Created: wr.Created,
		Model:   wr.Model,
		Usage: rmodel.Usage{
			PromptTokens:     wr.Usage.PromptTokens,
			CompletionTokens: wr.Usage.CompletionTokens,
			TotalTokens:      wr.Usage.TotalTokens,
		},
	}
	if out.Created == 0 {
		out.Created = time.Now().Unix()
	}
	for _, c := range wr.Choices {
		out.Choices = append(out.Choices, rmodel.Choice{
			Index:        c.Index,
			Message:      rmodel.Message{Role: c.Message.Role, Content: c.Message.Content},
			FinishReason: c.FinishReason,
		})
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

	var chunk rmodel.StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, nil
	}
	if chunk.Object == "" {
		chunk.Object = "chat.completion.chunk"
	}
	return []*rmodel.StreamChunk{&chunk}, nil
}

func (a *Adaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	maxTokens := 10
	return &rmodel.StandardRequest{
		Model:     modelName,
		Messages:  []rmodel.Message{{Role: "user", Content: "Hi"}},
		MaxTokens: &maxTokens,
	}
}

// knownModelFamilies gates discovery results to ids plausibly belonging to a
// chat-completion model, per spec.md §4.5.
var knownModelFamilies = []string{"gpt", "claude", "qwen", "glm", "llama", "mistral", "gemini"}

// FetchModels lists models from an OpenAI-spec `/v1/models` endpoint,
// filtering to ids containing a known model-family token (spec.md §4.5).
func (a *Adaptor) FetchModels(ctx context.Context, apiBase, apiKey string) ([]string, error) {
	url := adaptor.JoinURL(apiBase, "/v1/models")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new models request")
	}
	req.Header.Set("Authorization", adaptor.BearerHeader(apiKey))

	resp, err := upstream.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	defer resp.Body.Close()

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode models response")
	}

	var out []string
	for _, m := range body.Data {
		lower := strings.ToLower(m.ID)
		for _, family := range knownModelFamilies {
			if strings.Contains(lower, family) {
				out = append(out, m.ID)
				break
			}
		}
	}
	return out, nil
}
