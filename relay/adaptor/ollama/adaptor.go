// Package ollama implements the Adaptor for Ollama's native chat wire
// protocol (spec.md §4.1).
package ollama

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
	adaptor.Register(adaptor.SpecOllama, &Adaptor{})
}

type Adaptor struct{}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireOptions struct {
	NumPredict  *int     `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  wireOptions   `json:"options,omitempty"`
}

// collapseRoles folds the gateway's {system,user,assistant,tool} roles down
// to ollama's {user,assistant}, prefixing any system message into the
// following user turn (spec.md §4.1).
func collapseRoles(messages []rmodel.Message) []wireMessage {
	var out []wireMessage
	var pendingSystem []string
	for _, m := range messages {
		if m.Role == "system" {
			pendingSystem = append(pendingSystem, m.Content)
			continue
		}
		role := m.Role
		if role != "assistant" {
			role = "user"
		}
		content := m.Content
		if len(pendingSystem) > 0 && role == "user" {
			content = "System: " + strings.Join(pendingSystem, " ") + "\n" + content
			pendingSystem = nil
		}
		out = append(out, wireMessage{Role: role, Content: content})
	}
	if len(pendingSystem) > 0 {
		out = append(out, wireMessage{Role: "user", Content: "System: " + strings.Join(pendingSystem, " ")})
	}
	return out
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	wr := wireRequest{
		Model:    modelName,
		Messages: collapseRoles(req.Messages),
		Stream:   req.Stream,
		Options: wireOptions{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			TopK:        req.TopK,
		},
	}
	if req.Stop != nil {
		wr.Options.Stop = req.Stop.Values
	}

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal ollama request")
	}

	url := adaptor.JoinURL(apiBase, adaptor.ResolvePath(adaptor.SpecOllama, apiPath, "/api/chat"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new ollama request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", adaptor.BearerHeader(apiKey))
	}
	return httpReq, nil
}

type wireResponse struct {
	Message        wireMessage `json:"message"`
	PromptEvalCount int        `json:"prompt_eval_count"`
	EvalCount       int        `json:"eval_count"`
	Done            bool       `json:"done"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ollama response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal ollama response")
	}

	return &rmodel.StandardResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Choices: []rmodel.Choice{{
			Index:        0,
			Message:      rmodel.Message{Role: wr.Message.Role, Content: wr.Message.Content},
			FinishReason: "stop",
		}},
		Usage: rmodel.Usage{
			PromptTokens:     wr.PromptEvalCount,
			CompletionTokens: wr.EvalCount,
			TotalTokens:      wr.PromptEvalCount + wr.EvalCount,
		},
	}, nil
}

func (a *Adaptor) ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error) {
	s := strings.TrimSpace(string(line))
	if s == "" {
		return nil, nil
	}
	// Ollama's native stream is newline-delimited JSON, not `data:`-prefixed
	// SSE; normalize both shapes defensively.
	payload := strings.TrimSpace(strings.TrimPrefix(s, "data:"))
	if payload == "[DONE]" {
		return nil, nil
	}

	var wr wireResponse
	if err := json.Unmarshal([]byte(payload), &wr); err != nil {
		return nil, nil
	}

	chunk := &rmodel.StreamChunk{
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Choices: []rmodel.ChunkChoice{{
			Index: 0,
			Delta: map[string]any{"content": wr.Message.Content},
		}},
	}
	if wr.Done {
		reason := "stop"
		chunk.Choices[0].FinishReason = &reason
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

// FetchModels lists locally pulled models from `/api/tags` (spec.md §4.5).
func (a *Adaptor) FetchModels(ctx context.Context, apiBase, apiKey string) ([]string, error) {
	url := adaptor.JoinURL(apiBase, "/api/tags")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new tags request")
	}

	resp, err := upstream.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	defer resp.Body.Close()

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode tags response")
	}

	out := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		out = append(out, m.Name)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("ollama: no models reported at %s", apiBase)
	}
	return out, nil
}
