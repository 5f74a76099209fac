package adaptor

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

type stubAdaptor struct{ spec ApiSpec }

func (s *stubAdaptor) BuildRequest(ctx context.Context, req *rmodel.StandardRequest, apiBase, apiPath, apiKey, modelName string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodPost, apiBase, nil)
}

func (s *stubAdaptor) ParseResponse(resp *http.Response) (*rmodel.StandardResponse, error) {
	return nil, nil
}

func (s *stubAdaptor) ParseStreamChunk(line []byte) ([]*rmodel.StreamChunk, error) {
	return nil, nil
}

func (s *stubAdaptor) BuildTestRequest(modelName string) *rmodel.StandardRequest {
	return &rmodel.StandardRequest{Model: modelName}
}

func TestResolvePrefersApiSpecOverVendorTag(t *testing.T) {
	spec := ApiSpec("registry_test_spec_a")
	want := &stubAdaptor{spec: spec}
	Register(spec, want)

	got, ok := Resolve("some-vendor-name", string(spec))
	require.True(t, ok)
	require.Same(t, want, got)
}

func TestResolveFallsBackToVendorTagWhenApiSpecEmpty(t *testing.T) {
	spec := ApiSpec("registry_test_spec_b")
	want := &stubAdaptor{spec: spec}
	Register(spec, want)

	got, ok := Resolve(string(spec), "")
	require.True(t, ok)
	require.Same(t, want, got)
}

func TestResolveReturnsFalseForUnregisteredSpec(t *testing.T) {
	_, ok := Resolve("nope", "also-nope")
	require.False(t, ok)
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	spec := ApiSpec("registry_test_spec_dup")
	Register(spec, &stubAdaptor{spec: spec})

	require.Panics(t, func() {
		Register(spec, &stubAdaptor{spec: spec})
	})
}
