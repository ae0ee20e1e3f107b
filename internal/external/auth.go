package external

import (
	"fmt"
	"net/http"
	"time"

	"omc/internal/types"

	"github.com/golang-jwt/jwt/v5"
)

// Authorizer decorates an outbound request with the credentials of one
// upstream.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// ZGWAuthorizer signs a short-lived HS256 JWT per request, as required by the
// ZGW APIs (OpenZaak, Besluiten).
type ZGWAuthorizer struct {
	ClientID string
	Secret   types.SecretString
	UserID   string
	UserName string

	now func() time.Time
}

// NewZGWAuthorizer creates a ZGWAuthorizer.
func NewZGWAuthorizer(clientID string, secret types.SecretString, userID, userName string) *ZGWAuthorizer {
	return &ZGWAuthorizer{
		ClientID: clientID,
		Secret:   secret,
		UserID:   userID,
		UserName: userName,
		now:      time.Now,
	}
}

// Token returns a signed ZGW token.
func (a *ZGWAuthorizer) Token() (string, error) {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	claims := jwt.MapClaims{
		"client_id":           a.ClientID,
		"iss":                 a.ClientID,
		"iat":                 now().Unix(),
		"user_id":             a.UserID,
		"user_representation": a.UserName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.Secret.Unmask()))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to sign ZGW token", err)
	}
	return signed, nil
}

// Authorize implements Authorizer.
func (a *ZGWAuthorizer) Authorize(req *http.Request) error {
	signed, err := a.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}

// TokenAuthorizer sends a static API token (OpenKlant, Objecten, ObjectTypen).
type TokenAuthorizer struct {
	Token types.SecretString
}

// Authorize implements Authorizer.
func (a TokenAuthorizer) Authorize(req *http.Request) error {
	req.Header.Set("Authorization", "Token "+a.Token.Unmask())
	return nil
}

// notifyKeyIDLength is the length of the service id and secret parts of a
// NotifyNL API key: "{name}-{serviceId}-{secret}", both UUIDs.
const notifyKeyIDLength = 36

// NotifyKeyAuthorizer signs NotifyNL API requests. The bearer token is an
// HS256 JWT with the service id as issuer, signed with the secret part of the
// API key.
type NotifyKeyAuthorizer struct {
	serviceID string
	secret    types.SecretString

	now func() time.Time
}

// NewNotifyKeyAuthorizer splits apiKey into its service id and secret.
func NewNotifyKeyAuthorizer(apiKey types.SecretString) (*NotifyKeyAuthorizer, error) {
	key := apiKey.Unmask()
	minLen := 2*notifyKeyIDLength + 2
	if len(key) < minLen {
		return nil, types.NewAppError(
			types.ErrCodeValidationMissingField,
			fmt.Sprintf("NotifyNL API key must be at least %d characters", minLen),
			nil,
		)
	}
	secret := key[len(key)-notifyKeyIDLength:]
	serviceID := key[len(key)-2*notifyKeyIDLength-1 : len(key)-notifyKeyIDLength-1]

	return &NotifyKeyAuthorizer{
		serviceID: serviceID,
		secret:    types.SecretString(secret),
		now:       time.Now,
	}, nil
}

// ServiceID returns the service id embedded in the API key.
func (a *NotifyKeyAuthorizer) ServiceID() string {
	return a.serviceID
}

// Authorize implements Authorizer.
func (a *NotifyKeyAuthorizer) Authorize(req *http.Request) error {
	claims := jwt.MapClaims{
		"iss": a.serviceID,
		"iat": a.now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.secret.Unmask()))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to sign NotifyNL token", err)
	}
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}

var (
	_ Authorizer = (*ZGWAuthorizer)(nil)
	_ Authorizer = TokenAuthorizer{}
	_ Authorizer = (*NotifyKeyAuthorizer)(nil)
)
