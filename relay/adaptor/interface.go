// Package adaptor defines the per-vendor translation boundary between the
// gateway's StandardRequest/StandardResponse shapes and each upstream
// vendor's wire protocol (spec.md §4.1).
package adaptor

import (
	"context"
	"net/http"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

// Adaptor translates between the gateway's canonical chat-completion shape
// and one upstream vendor's wire protocol. Every method must be safe to call
// concurrently; adaptors hold no per-request mutable state.
type Adaptor interface {
	// BuildRequest turns a StandardRequest plus the target model's endpoint
	// and credential into an outbound *http.Request ready to send, applying
	// the vendor's URL-join and header-assembly rules (spec.md §4.1, §4.2
	// rule 2). apiPath overrides the adaptor's default path when non-empty,
	// so a ModelRecord can point at a non-standard deployment path.
	BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error)

	// ParseResponse reads a non-streaming upstream response body and returns
	// the gateway's canonical StandardResponse, or a plain error describing
	// why the body could not be translated; the dispatch engine wraps that
	// error as a KindEmptyResponse DispatchError.
	ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error)

	// ParseStreamChunk translates one decoded upstream SSE data line into
	// zero or more canonical StreamChunk values. Zero chunks (nil, nil) means
	// the line carried no user-visible delta (e.g. a vendor keep-alive).
	ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error)

	// BuildTestRequest returns the minimal request body the connectivity
	// probe sends to this vendor for a given model (spec.md §4.4).
	BuildTestRequest(modelName string) *rmodel.StandardRequest
}

// ModelLister is implemented by adaptors whose vendor exposes a models
// listing endpoint the discovery module can call (spec.md §4.5). Adaptors
// without a discovery endpoint simply don't implement this interface.
type ModelLister interface {
	FetchModels(ctx context.Context, apiBase, apiKey string) ([]string, error)
}
