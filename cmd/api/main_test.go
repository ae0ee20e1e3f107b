package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omc/internal/config"
	"omc/internal/core"
	"omc/internal/types"
)

const (
	testSecret  = "0123456789abcdef0123456789abcdef"
	testEvent   = `{"kanaal":"test","resource":"test","actie":"test","hoofdObject":"https://example.nl/t","resourceUrl":"https://example.nl/t"}`
	testQueue   = "http://localhost:4566/000000000000/omc-events"
	testNotifyK = "omc_test-8c3f6b1e-75d4-4f5b-9d0b-2f9c2a1f7e11-5a0b4c1d-2e3f-4a5b-8c6d-7e8f9a0b1c2d"
)

// setTestEnv sets the minimal environment for a local configuration.
func setTestEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"APP_ENV":                "local",
		"OMC_AUTH_JWT_SECRET":    testSecret,
		"OMC_AUTH_JWT_ISSUER":    "open-notificaties",
		"OMC_AUTH_JWT_AUDIENCE":  "omc",
		"ZGW_OPENZAAK_DOMAIN":    "openzaak.example.nl",
		"ZGW_AUTH_CLIENT_ID":     "omc",
		"ZGW_AUTH_SECRET":        "zgw-secret",
		"ZGW_OPENKLANT_DOMAIN":   "openklant.example.nl",
		"ZGW_OPENKLANT_TOKEN":    "klant-token",
		"ZGW_OBJECTEN_DOMAIN":    "objecten.example.nl",
		"ZGW_OBJECTEN_TOKEN":     "objecten-token",
		"ZGW_OBJECTTYPEN_DOMAIN": "objecttypen.example.nl",
		"ZGW_OBJECTTYPEN_TOKEN":  "objecttypen-token",
		"NOTIFY_API_KEY":         testNotifyK,
		"NOTIFY_TEMPLATES_JSON":  `{"case_created":{"email":"tpl-e"}}`,
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

type fakeSQS struct {
	sent []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeSQS) GetQueueAttributes(context.Context, *sqs.GetQueueAttributesInput, ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	return &sqs.GetQueueAttributesOutput{}, nil
}

func buildTestServer(t *testing.T, clients awsClients) *core.Server {
	t.Helper()
	setTestEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	srv, err := buildServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), clients)
	require.NoError(t, err)
	return srv
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "open-notificaties",
		Audience:  jwt.ClaimStrings{"omc"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func post(t *testing.T, srv *core.Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := buildTestServer(t, awsClients{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestListen_Inline(t *testing.T) {
	srv := buildTestServer(t, awsClients{})

	rec := post(t, srv, "/v1/events/listen", testEvent)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body core.ResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, types.StatusSkipped, body.Status)
}

func TestListen_Queued(t *testing.T) {
	t.Setenv("SQS_EVENTS", testQueue)
	fake := &fakeSQS{}
	srv := buildTestServer(t, awsClients{sqs: fake})
	require.Len(t, srv.HealthProbes, 1)

	caseEvent := `{"kanaal":"zaken","resource":"zaak","actie":"create",` +
		`"hoofdObject":"https://openzaak.example.nl/zaken/api/v1/zaken/1",` +
		`"resourceUrl":"https://openzaak.example.nl/zaken/api/v1/zaken/1"}`
	rec := post(t, srv, "/v1/events/listen", caseEvent)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, testQueue, aws.ToString(fake.sent[0].QueueUrl))
}

func TestTemplatePreview_StubProvider(t *testing.T) {
	srv := buildTestServer(t, awsClients{})

	rec := post(t, srv, "/v1/templates/tpl-e/preview", `{"personalisation":{"klant.voornaam":"Jan"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "((klant.voornaam))")
}

func TestConfirm_RejectsBadReference(t *testing.T) {
	srv := buildTestServer(t, awsClients{})

	rec := post(t, srv, "/v1/notify/confirm",
		`{"id":"n-1","reference":"!!!","status":"delivered","notification_type":"email"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRoutesRequireAuth(t *testing.T) {
	srv := buildTestServer(t, awsClients{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/events/listen", strings.NewReader(testEvent)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewAWSClients_Disabled(t *testing.T) {
	clients, err := newAWSClients(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, clients.cloudWatch)
	assert.Nil(t, clients.sqs)
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, newLogger("warn").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, newLogger("bogus").Enabled(context.Background(), slog.LevelInfo))
}
