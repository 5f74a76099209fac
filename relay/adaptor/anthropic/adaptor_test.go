package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestBuildRequestMovesSystemMessageOutOfMessagesArray(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"model": "claude-test",
			"content": [{"type":"text","text":"hello back"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 4, "output_tokens": 2}
		}`))
	}))
	defer srv.Close()

	a := &Adaptor{}
	req := &rmodel.StandardRequest{
		Messages: []rmodel.Message{
			{Role: "system", Content: "be nice"},
			{Role: "user", Content: "hi"},
		},
	}

	httpReq, err := a.BuildRequest(context.Background(), req, srv.URL, "", "sk-ant-test", "claude-test")
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)

	require.Equal(t, "be nice", captured["system"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	require.Equal(t, float64(defaultMaxTokens), captured["max_tokens"])

	standard, err := a.ParseResponse(resp)
	require.NoError(t, err)
	require.Equal(t, "hello back", standard.Choices[0].Message.Content)
	require.Equal(t, "assistant", standard.Choices[0].Message.Role)
	require.Equal(t, 6, standard.Usage.TotalTokens)
}

func TestBuildRequestRespectsExplicitMaxTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		require.Equal(t, float64(50), body["max_tokens"])
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := &Adaptor{}
	maxTokens := 50
	req := &rmodel.StandardRequest{
		Messages:  []rmodel.Message{{Role: "user", Content: "hi"}},
		MaxTokens: &maxTokens,
	}
	httpReq, err := a.BuildRequest(context.Background(), req, srv.URL, "", "key", "claude-test")
	require.NoError(t, err)
	_, err = http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
}

func TestParseStreamChunkHandlesContentBlockDelta(t *testing.T) {
	a := &Adaptor{}
	line := `data: {"type":"content_block_delta","delta":{"text":"hi"}}`

	chunks, err := a.ParseStreamChunk([]byte(line))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "hi", chunks[0].Choices[0].Delta["content"])
}

func TestParseStreamChunkIgnoresUnrelatedEventTypes(t *testing.T) {
	a := &Adaptor{}
	line := `data: {"type":"ping"}`

	chunks, err := a.ParseStreamChunk([]byte(line))
	require.NoError(t, err)
	require.Nil(t, chunks)
}

func TestBuildTestRequestDefaultsModelFromConfig(t *testing.T) {
	a := &Adaptor{}
	req := a.BuildTestRequest("")
	require.NotEmpty(t, req.Model)
}
