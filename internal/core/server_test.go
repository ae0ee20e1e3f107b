package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omc/internal/config"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "open-notificaties"
	testAudience = "omc"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "dev",
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			Issuer:    testIssuer,
			Audience:  testAudience,
		},
		Build: config.BuildInfo{Version: "1.2.3"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		Subject:   "open-notificaties",
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

// newTestServer mounts a /v1/echo route next to the defaults.
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := NewServer(cfg, discardLogger())
	require.NoError(t, err)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/echo", func(w http.ResponseWriter, r *http.Request) {
			JSON(w, r, http.StatusOK, APIResponse{Data: "ok"})
		})
		r.Get("/panic", func(http.ResponseWriter, *http.Request) {
			panic("boom")
		})
	})
	srv.MountRoutes()
	return srv
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	srv, err := NewServer(cfg, discardLogger())

	require.NoError(t, err)
	assert.Same(t, cfg, srv.Config)
	assert.NotNil(t, srv.Authenticator)
	assert.NotNil(t, srv.Router())
	assert.NotNil(t, srv.Handler())
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, discardLogger())
	assert.Error(t, err)

	_, err = NewServer(testConfig(), nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	_, err = NewServer(cfg, discardLogger())
	assert.Error(t, err, "non-local environments require a secret")
}

func TestNewServer_LocalWithoutSecretDisablesAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "local"
	cfg.Auth.JWTSecret = ""

	srv := newTestServer(t, cfg)
	assert.Nil(t, srv.Authenticator)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type closingProbe struct {
	stubProbe
	closed bool
	err    error
}

func (p *closingProbe) Close() error {
	p.closed = true
	return p.err
}

func TestServer_ShutdownClosesProbes(t *testing.T) {
	srv := newTestServer(t, testConfig())
	probe := &closingProbe{stubProbe: stubProbe{name: "sqs"}}
	srv.HealthProbes = []HealthProbe{stubProbe{name: "plain"}, probe}

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.True(t, probe.closed)

	probe.err = errors.New("close failed")
	assert.ErrorContains(t, srv.Shutdown(context.Background()), "close failed")
}
