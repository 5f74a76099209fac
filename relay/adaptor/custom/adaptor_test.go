package custom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestCustomAdaptorIsRegisteredUnderCustomSpec(t *testing.T) {
	a, ok := adaptor.Resolve("anything", "custom")
	require.True(t, ok)
	_, isCustom := a.(*Adaptor)
	require.True(t, isCustom)
}

func TestBuildRequestDelegatesToOpenAIShape(t *testing.T) {
	a := &Adaptor{}
	req := &rmodel.StandardRequest{Messages: []rmodel.Message{{Role: "user", Content: "hi"}}}

	httpReq, err := a.BuildRequest(context.Background(), req, "https://my-deployment.example.com", "", "key", "my-model")
	require.NoError(t, err)
	require.Equal(t, "/v1/chat/completions", httpReq.URL.Path)
	require.Equal(t, "Bearer key", httpReq.Header.Get("Authorization"))
}

func TestBuildTestRequestDelegatesToOpenAIShape(t *testing.T) {
	a := &Adaptor{}
	req := a.BuildTestRequest("my-model")
	require.Equal(t, "my-model", req.Model)
	require.NotEmpty(t, req.Messages)
}
