package ollama

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestCollapseRolesFoldsSystemIntoFollowingUserTurn(t *testing.T) {
	messages := []rmodel.Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "tool", Content: "tool output"},
	}

	out := collapseRoles(messages)
	require.Len(t, out, 3)
	require.Equal(t, "user", out[0].Role)
	require.Contains(t, out[0].Content, "System: be nice")
	require.Contains(t, out[0].Content, "hi")
	require.Equal(t, "assistant", out[1].Role)
	require.Equal(t, "user", out[2].Role)
}

func TestCollapseRolesTrailingSystemWithNoFollowingUserTurn(t *testing.T) {
	messages := []rmodel.Message{
		{Role: "assistant", Content: "hello"},
		{Role: "system", Content: "wrap up"},
	}

	out := collapseRoles(messages)
	require.Len(t, out, 2)
	require.Equal(t, "user", out[1].Role)
	require.Contains(t, out[1].Content, "wrap up")
}

func TestBuildRequestOmitsAuthorizationWhenApiKeyEmpty(t *testing.T) {
	a := &Adaptor{}
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hi"}}}

	httpReq, err := a.BuildRequest(context.Background(), req, "http://localhost:11434", "", "", "llama3")
	require.NoError(t, err)
	require.Empty(t, httpReq.Header.Get("Authorization"))
}

func TestParseStreamChunkSetsFinishReasonOnlyWhenDone(t *testing.T) {
	a := &Adaptor{}

	chunks, err := a.ParseStreamChunk([]byte(`{"message":{"role":"assistant","content":"hi"},"done":false}`))
	require.NoError(t, err)
	require.Nil(t, chunks[0].Choices[0].FinishReason)

	chunks, err = a.ParseStreamChunk([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
	require.NoError(t, err)
	require.NotNil(t, chunks[0].Choices[0].FinishReason)
	require.Equal(t, "stop", *chunks[0].Choices[0].FinishReason)
}
