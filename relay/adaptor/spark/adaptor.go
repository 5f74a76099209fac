// Package spark implements the Adaptor for iFlytek Spark's chat wire
// protocol (spec.md §4.1).
package spark

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func init() {
	adaptor.Register(adaptor.SpecSpark, &Adaptor{})
}

type Adaptor struct{}

type wireHeader struct {
	AppId string `json:"app_id"`
	Uid   string `json:"uid"`
}

type wireChat struct {
	Domain      string   `json:"domain"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
}

type wireParameter struct {
	Chat wireChat `json:"chat"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wirePayload struct {
	Message struct {
		Text []wireMessage `json:"text"`
	} `json:"message"`
}

type wireRequest struct {
	Header    wireHeader    `json:"header"`
	Parameter wireParameter `json:"parameter"`
	Payload   wirePayload   `json:"payload"`
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	wr := wireRequest{
		Header: wireHeader{AppId: apiKey, Uid: uuid.NewString()},
		Parameter: wireParameter{Chat: wireChat{
			Domain:      modelName,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}},
	}
	if req.TopK != nil {
		wr.Parameter.Chat.TopK = req.TopK
	}
	for _, m := range req.Messages {
		wr.Payload.Message.Text = append(wr.Payload.Message.Text, wireMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal spark request")
	}

	url := adaptor.JoinURL(apiBase, adaptor.ResolvePath(adaptor.SpecSpark, apiPath, "/v1/chat/completions"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new spark request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", adaptor.BearerHeader(apiKey))
	return httpReq, nil
}

type wireResponse struct {
	Payload struct {
		Choices struct {
			Text []struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read spark response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal spark response")
	}

	content := ""
	if len(wr.Payload.Choices.Text) > 0 {
		content = wr.Payload.Choices.Text[0].Content
	}

	return &rmodel.StandardResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Choices: []rmodel.Choice{{
			Index:        0,
			Message:      rmodel.Message{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: rmodel.Usage{},
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

	var wr wireResponse
	if err := json.Unmarshal([]byte(payload), &wr); err != nil {
		return nil, nil
	}
	if len(wr.Payload.Choices.Text) == 0 {
		return nil, nil
	}

	chunk := &rmodel.StreamChunk{
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Choices: []rmodel.ChunkChoice{{
			Index: 0,
			Delta: map[string]any{"content": wr.Payload.Choices.Text[0].Content},
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
