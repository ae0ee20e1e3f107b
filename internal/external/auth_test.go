package external

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"omc/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testServiceID = "8c3f6b1e-75d4-4f5b-9d0b-2f9c2a1f7e11"
	testKeySecret = "5a0b4c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d"
	testNotifyKey = "omc_test-" + testServiceID + "-" + testKeySecret
)

func parseBearer(t *testing.T, req *http.Request, secret string) jwt.MapClaims {
	t.Helper()
	header := req.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "), "header %q", header)

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		require.True(t, ok)
		return []byte(secret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestZGWAuthorizer(t *testing.T) {
	auth := NewZGWAuthorizer("omc-client", "zgw-secret", "omc", "OMC gateway")
	auth.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	req, _ := http.NewRequest(http.MethodGet, "https://openzaak.example.nl/zaken/api/v1/zaken", nil)
	require.NoError(t, auth.Authorize(req))

	claims := parseBearer(t, req, "zgw-secret")
	assert.Equal(t, "omc-client", claims["client_id"])
	assert.Equal(t, "omc-client", claims["iss"])
	assert.Equal(t, "omc", claims["user_id"])
	assert.Equal(t, "OMC gateway", claims["user_representation"])
	assert.EqualValues(t, 1_700_000_000, claims["iat"])
}

func TestTokenAuthorizer(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://openklant.example.nl/klanten", nil)
	require.NoError(t, TokenAuthorizer{Token: types.SecretString("abc")}.Authorize(req))
	assert.Equal(t, "Token abc", req.Header.Get("Authorization"))
}

func TestNotifyKeyAuthorizer(t *testing.T) {
	auth, err := NewNotifyKeyAuthorizer(testNotifyKey)
	require.NoError(t, err)
	assert.Equal(t, testServiceID, auth.ServiceID())

	req, _ := http.NewRequest(http.MethodPost, "https://api.notifynl.nl/v2/notifications/email", nil)
	require.NoError(t, auth.Authorize(req))

	claims := parseBearer(t, req, testKeySecret)
	assert.Equal(t, testServiceID, claims["iss"])
	assert.Contains(t, claims, "iat")
}

func TestNotifyKeyAuthorizer_ShortKey(t *testing.T) {
	_, err := NewNotifyKeyAuthorizer("too-short")
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeValidationMissingField, types.CodeOf(err))
}
