package openai

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

func TestBuildRequestThenParseResponseRoundTrips(t *testing.T) {
	var capturedBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &capturedBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-abc",
			"object": "chat.completion",
			"created": 123,
			"model": "gpt-test",
			"choices": [{"index":0,"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}],
			"usage": {"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}
		}`))
	}))
	defer srv.Close()

	a := &Adaptor{}
	req := &rmodel.StandardRequest{
		Messages: []rmodel.Message{{Role: "user", Content: "hello"}},
	}

	httpReq, err := a.BuildRequest(context.Background(), req, srv.URL, "", "sk-test", "gpt-test")
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)

	standard, err := a.ParseResponse(resp)
	require.NoError(t, err)
	require.Equal(t, "chatcmpl-abc", standard.ID)
	require.Equal(t, "hi there", standard.Choices[0].Message.Content)
	require.Equal(t, 5, standard.Usage.TotalTokens)
	require.Equal(t, "gpt-test", capturedBody["model"])
}

func TestBuildRequestHonorsApiPathOverride(t *testing.T) {
	a := &Adaptor{}
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hi"}}}

	httpReq, err := a.BuildRequest(context.Background(), req, "https://api.example.com", "/custom/endpoint", "key", "m")
	require.NoError(t, err)
	require.Equal(t, "/custom/endpoint", httpReq.URL.Path)
}

func TestParseStreamChunkDropsDoneAndNonDataLines(t *testing.T) {
	a := &Adaptor{}

	chunks, err := a.ParseStreamChunk([]byte("data: [DONE]"))
	require.NoError(t, err)
	require.Nil(t, chunks)

	chunks, err = a.ParseStreamChunk([]byte(": keep-alive"))
	require.NoError(t, err)
	require.Nil(t, chunks)
}

func TestParseStreamChunkRewrapsDataLine(t *testing.T) {
	a := &Adaptor{}
	line := `data: {"id":"1","model":"gpt-test","choices":[{"index":0,"delta":{"content":"hi"}}]}`

	chunks, err := a.ParseStreamChunk([]byte(line))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "chat.completion.chunk", chunks[0].Object)
	require.Equal(t, "1", chunks[0].ID)
}

func TestFetchModelsFiltersToKnownFamilies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o"},{"id":"text-embedding-3-small"},{"id":"claude-mirror"}]}`))
	}))
	defer srv.Close()

	a := &Adaptor{}
	ids, err := a.FetchModels(context.Background(), srv.URL, "sk-test")
	require.NoError(t, err)
	require.Contains(t, ids, "gpt-4o")
	require.Contains(t, ids, "claude-mirror")
	require.NotContains(t, ids, "text-embedding-3-small")
}
