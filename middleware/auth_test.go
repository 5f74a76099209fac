package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/common/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runAuth(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}

	GatewayAuth()(c)
	return w
}

func TestGatewayAuthDisabledWhenKeyEmpty(t *testing.T) {
	orig := config.GatewayKey
	config.GatewayKey = ""
	defer func() { config.GatewayKey = orig }()

	w := runAuth(t, "")
	require.Equal(t, 200, w.Code)
}

func TestGatewayAuthRejectsMissingHeader(t *testing.T) {
	orig := config.GatewayKey
	config.GatewayKey = "secret"
	defer func() { config.GatewayKey = orig }()

	w := runAuth(t, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "missing_credential")
}

func TestGatewayAuthRejectsWrongToken(t *testing.T) {
	orig := config.GatewayKey
	config.GatewayKey = "secret"
	defer func() { config.GatewayKey = orig }()

	w := runAuth(t, "Bearer wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayAuthAcceptsCorrectToken(t *testing.T) {
	orig := config.GatewayKey
	config.GatewayKey = "secret"
	defer func() { config.GatewayKey = orig }()

	w := runAuth(t, "Bearer secret")
	require.Equal(t, 200, w.Code)
}
