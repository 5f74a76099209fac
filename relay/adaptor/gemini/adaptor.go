// Package gemini implements the Adaptor for Google's Gemini generateContent
// wire protocol (spec.md §4.1).
package gemini

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
	adaptor.Register(adaptor.SpecGemini, &Adaptor{})
}

type Adaptor struct{}

type systemInstruction struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type wireRequest struct {
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	Contents          []content          `json:"contents"`
	GenerationConfig  *generationConfig  `json:"generationConfig,omitempty"`
}

func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	var sysParts []string
	var contents []content
	for _, m := range req.Messages {
		if m.Role == "system" {
			sysParts = append(sysParts, m.Content)
			continue
		}
		contents = append(contents, content{Role: geminiRole(m.Role), Parts: []part{{Text: m.Content}}})
	}

	wr := wireRequest{Contents: contents}
	if len(sysParts) > 0 {
		wr.SystemInstruction = &systemInstruction{Parts: []part{{Text: strings.Join(sysParts, "\n")}}}
	}

	gc := generationConfig{
		MaxOutputTokens: req.MaxTokens,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		TopK:            req.TopK,
	}
	if req.Stop != nil {
		gc.StopSequences = req.Stop.Values
	}
	wr.GenerationConfig = &gc

	body, err := json.Marshal(wr)
	if err != nil {
		return nil, errors.Wrap(err, "marshal gemini request")
	}

	method := "generateContent"
	if req.Stream {
		method = "streamGenerateContent"
	}
	path := adaptor.ResolvePath(adaptor.SpecGemini, apiPath, "/v1beta/models/"+modelName+":"+method)
	url := adaptor.JoinURL(apiBase, path) + "?key=" + apiKey

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "new gemini request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read gemini response body")
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return nil, errors.Wrap(err, "unmarshal gemini response")
	}

	out := &rmodel.StandardResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Usage: rmodel.Usage{
			PromptTokens:     wr.UsageMetadata.PromptTokenCount,
			CompletionTokens: wr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      wr.UsageMetadata.TotalTokenCount,
		},
	}
	if len(wr.Candidates) > 0 {
		c := wr.Candidates[0]
		text := ""
		if len(c.Content.Parts) > 0 {
			text = c.Content.Parts[0].Text
		}
		out.Choices = []rmodel.Choice{{
			Index:        0,
			Message:      rmodel.Message{Role: "assistant", Content: text},
			FinishReason: strings.ToLower(c.FinishReason),
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
	if len(wr.Candidates) == 0 {
		return nil, nil
	}

	c := wr.Candidates[0]
	text := ""
	if len(c.Content.Parts) > 0 {
		text = c.Content.Parts[0].Text
	}
	chunk := &rmodel.StreamChunk{
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Choices: []rmodel.ChunkChoice{{
			Index: 0,
			Delta: map[string]any{"content": text},
		}},
	}
	if c.FinishReason != "" {
		reason := strings.ToLower(c.FinishReason)
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

// FetchModels lists models from Gemini's `/v1beta/models` endpoint, keeping
// only entries whose name contains "gemini" (spec.md §4.5).
func (a *Adaptor) FetchModels(ctx context.Context, apiBase, apiKey string) ([]string, error) {
	url := adaptor.JoinURL(apiBase, "/v1beta/models") + "?key=" + apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new models request")
	}

	resp, err := upstream.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	defer resp.Body.Close()

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode models response")
	}

	var out []string
	for _, m := range body.Models {
		if strings.Contains(strings.ToLower(m.Name), "gemini") {
			out = append(out, m.Name)
		}
	}
	return out, nil
}
