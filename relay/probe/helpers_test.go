package probe

import (
	"context"
	"net/http"
	"testing"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func contextBackground() context.Context { return context.Background() }

type probeFakeAdaptor struct{}

func (a *probeFakeAdaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodPost, apiBase, nil)
}

func (a *probeFakeAdaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	return nil, nil
}

func (a *probeFakeAdaptor) ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error) {
	return nil, nil
}

func (a *probeFakeAdaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	return &rmodel.StandardRequest{Model: modelName}
}

func registerProbeTestSpec(t *testing.T, spec string) {
	t.Helper()
	adaptor.Register(adaptor.ApiSpec(spec), &probeFakeAdaptor{})
}
