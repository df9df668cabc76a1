package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipic-shop/recipic/pkg/authapi"
)

func TestLivez(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/livez", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[authapi.HealthResponse](t, rr)
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "test", body.Version)
	require.NotEmpty(t, body.Uptime)
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/readyz", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[authapi.HealthResponse](t, rr)
	require.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Checks)
	require.Equal(t, "ok", body.Checks.Database)
	require.Equal(t, "ok", body.Checks.Signer)
}

func TestJWKS(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get(t, "/.well-known/jwks.json", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[authapi.JWKSResponse](t, rr)
	require.Len(t, body.Keys, 1)
	require.Equal(t, "test-key", body.Keys[0].Kid)
}

func TestCORSHeadersApplied(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("Origin", "http://recipic.shop")
	rr := env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "http://recipic.shop", rr.Header().Get("Access-Control-Allow-Origin"))
}
