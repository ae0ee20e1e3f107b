package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"omc/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifyClient(t *testing.T, serverURL string) *NotifyClient {
	t.Helper()
	client, err := NewNotifyClientWithBase(
		NewBaseClient(&http.Client{Timeout: 5 * time.Second}, "test-notify", "OMC-Test/1.0"),
		NotifyClientConfig{APIKey: testNotifyKey, BaseURL: serverURL},
	)
	require.NoError(t, err)
	return client
}

func TestNotifySendEmail_Success(t *testing.T) {
	var received EmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/notifications/email", r.URL.Path)
		parseBearer(t, r, testKeySecret)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"n-1","reference":"ref","uri":"https://api.notifynl.nl/v2/notifications/n-1","template":{"id":"tpl","version":3}}`))
	}))
	defer server.Close()

	receipt, err := newTestNotifyClient(t, server.URL).SendEmail(context.Background(), EmailRequest{
		EmailAddress:    "jan@example.nl",
		TemplateID:      "tpl",
		Personalisation: map[string]any{"klant.voornaam": "Jan"},
		Reference:       "ref",
	})
	require.NoError(t, err)

	assert.Equal(t, "n-1", receipt.ID)
	assert.Equal(t, 3, receipt.Template.Version)
	assert.Equal(t, "jan@example.nl", received.EmailAddress)
	assert.Equal(t, "Jan", received.Personalisation["klant.voornaam"])
	assert.Equal(t, "ref", received.Reference)
}

func TestNotifySendSms_Success(t *testing.T) {
	var received SmsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/notifications/sms", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"n-2"}`))
	}))
	defer server.Close()

	receipt, err := newTestNotifyClient(t, server.URL).SendSms(context.Background(), SmsRequest{
		PhoneNumber: "0612345678",
		TemplateID:  "tpl-sms",
	})
	require.NoError(t, err)
	assert.Equal(t, "n-2", receipt.ID)
	assert.Equal(t, "0612345678", received.PhoneNumber)
}

func TestNotifyPreviewTemplate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/template/tpl-1/preview", r.URL.Path)
		w.Write([]byte(`{"id":"tpl-1","type":"email","version":2,"body":"Beste Jan","subject":"Uw zaak"}`))
	}))
	defer server.Close()

	preview, err := newTestNotifyClient(t, server.URL).PreviewTemplate(context.Background(), "tpl-1", map[string]any{"name": "Jan"})
	require.NoError(t, err)
	assert.Equal(t, "Beste Jan", preview.Body)
	assert.Equal(t, "Uw zaak", preview.Subject)
}

func TestNotify_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   types.ErrorCode
	}{
		{"bad request", http.StatusBadRequest, `{"status_code":400,"errors":[{"error":"BadRequestError","message":"Missing personalisation: naam"}]}`, types.ErrCodeDeliveryRejected},
		{"forbidden", http.StatusForbidden, `{"status_code":403,"errors":[{"error":"AuthError","message":"Invalid token"}]}`, types.ErrCodeDeliveryRejected},
		{"rate limited", http.StatusTooManyRequests, `{}`, types.ErrCodeDeliveryFailed},
		{"server error", http.StatusInternalServerError, `oops`, types.ErrCodeDeliveryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestNotifyClient(t, server.URL).SendEmail(context.Background(), EmailRequest{TemplateID: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err))
		})
	}
}

func TestNotify_ErrorMessageIncludesProviderDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status_code":400,"errors":[{"error":"ValidationError","message":"email_address Not a valid email address"}]}`))
	}))
	defer server.Close()

	_, err := newTestNotifyClient(t, server.URL).SendEmail(context.Background(), EmailRequest{TemplateID: "x"})
	assert.Contains(t, err.Error(), "email_address Not a valid email address")
}

func TestNotify_TransportErrorIsDeliveryFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestNotifyClient(t, url).SendSms(context.Background(), SmsRequest{TemplateID: "x"})
	assert.Equal(t, types.ErrCodeDeliveryFailed, types.CodeOf(err))
}

func TestNewNotifyClient_InvalidKey(t *testing.T) {
	_, err := NewNotifyClient(nil, NotifyClientConfig{APIKey: "short"})
	assert.Error(t, err)
}
