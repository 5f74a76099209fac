package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/model"
)

func TestInterpretStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{428, false},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, interpretStatus(tc.status), "status %d", tc.status)
	}
}

func TestProbeReturnsUnreachableForNonRegisteredVendor(t *testing.T) {
	m := model.ModelRecord{Vendor: "nope", ApiSpec: "nope-spec", ModelName: "m"}
	reachable, err := Probe(contextBackground(), m)
	require.Error(t, err)
	require.False(t, reachable)
}

func TestProbeInterpretsUpstream200AsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	registerProbeTestSpec(t, "probe_test_spec_ok")
	m := model.ModelRecord{Vendor: "x", ApiSpec: "probe_test_spec_ok", ApiBase: srv.URL, ModelName: "m"}

	reachable, err := Probe(contextBackground(), m)
	require.NoError(t, err)
	require.True(t, reachable)
}

func TestProbeInterprets4xxAsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	registerProbeTestSpec(t, "probe_test_spec_401")
	m := model.ModelRecord{Vendor: "x", ApiSpec: "probe_test_spec_401", ApiBase: srv.URL, ModelName: "m"}

	reachable, err := Probe(contextBackground(), m)
	require.NoError(t, err)
	require.False(t, reachable)
}
