// Package custom implements the identity-passthrough Adaptor for
// self-declared OpenAI-compatible deployments that don't match any known
// api_spec (spec.md §4.1).
package custom

import (
	"context"
	"net/http"

	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/relay/adaptor/openai"
	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

func init() {
	adaptor.Register(adaptor.ApiSpec("custom"), &Adaptor{})
}

// Adaptor passes requests and responses through unchanged, delegating the
// actual wire shape to the openai adaptor since "custom" in practice means
// "an OpenAI-compatible deployment with no further translation" (spec.md
// §4.1's "custom spec. Identity passthrough.").
type Adaptor struct {
	delegate openai.Adaptor
}

func (a *Adaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	return a.delegate.BuildRequest(ctx, req, apiBase, apiPath, apiKey, modelName)
}

func (a *Adaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	return a.delegate.ParseResponse(resp)
}

func (a *Adaptor) ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error) {
	return a.delegate.ParseStreamChunk(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	return a.delegate.BuildTestRequest(modelName)
}
