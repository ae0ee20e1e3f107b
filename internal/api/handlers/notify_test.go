package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omc/internal/core"
	"omc/internal/notify"
	"omc/internal/telemetry"
	"omc/internal/types"
)

type fakeReporter struct {
	completions []telemetry.Completion
	err         error
}

func (r *fakeReporter) ReportCompletion(_ context.Context, c telemetry.Completion) (string, error) {
	r.completions = append(r.completions, c)
	if r.err != nil {
		return "", r.err
	}
	return "https://openklant.example.nl/contactmomenten/api/v1/contactmomenten/9", nil
}

type fakePreviewer struct {
	result          notify.TemplateResult
	templateID      string
	personalization map[string]any
}

func (p *fakePreviewer) PreviewTemplate(_ context.Context, templateID string, personalization map[string]any) notify.TemplateResult {
	p.templateID = templateID
	p.personalization = personalization
	return p.result
}

const (
	testPartyURI = "https://openklant.example.nl/klanten/api/v1/klanten/7"
	testCase     = "https://openzaak.example.nl/zaken/api/v1/zaken/1"
)

func encodedReference(t *testing.T, partyID string) string {
	t.Helper()
	ref := types.NotifyReference{
		Notification: types.NotificationEvent{
			Channel:    types.ChannelCases,
			Attributes: types.EventAttributes{SourceOrganization: "123456789"},
		},
		CaseID:  testCase,
		PartyID: partyID,
	}
	encoded, err := ref.Encode()
	require.NoError(t, err)
	return encoded
}

func confirmBody(reference, status, kind string) string {
	return `{"id":"n-1","reference":"` + reference + `","to":"a@b.nl","status":"` + status +
		`","notification_type":"` + kind + `"}`
}

func serve(h *NotifyHandler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/v1", h.RegisterRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandleConfirm_Delivered(t *testing.T) {
	reporter := &fakeReporter{}
	h := NewNotifyHandler(reporter, &fakePreviewer{}, discardLogger())

	rec := serve(h, http.MethodPost, "/v1/notify/confirm", confirmBody(encodedReference(t, testPartyURI), "delivered", "email"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Delivered)
	assert.NotEmpty(t, body.Feedback)

	require.Len(t, reporter.completions, 1)
	c := reporter.completions[0]
	assert.Equal(t, testPartyURI, c.Party.URI)
	assert.Equal(t, testCase, c.CaseURI)
	assert.Equal(t, types.NotifyMethodEmail, c.Method)
	assert.True(t, c.Succeeded)
	assert.Equal(t, "123456789", c.SourceOrg)
}

func TestHandleConfirm_FailedDelivery(t *testing.T) {
	reporter := &fakeReporter{}
	h := NewNotifyHandler(reporter, &fakePreviewer{}, discardLogger())

	rec := serve(h, http.MethodPost, "/v1/notify/confirm", confirmBody(encodedReference(t, testPartyURI), "permanent-failure", "sms"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, reporter.completions, 1)
	assert.False(t, reporter.completions[0].Succeeded)
	assert.Equal(t, types.NotifyMethodSms, reporter.completions[0].Method)
	assert.Contains(t, reporter.completions[0].Message, "permanent-failure")
}

func TestHandleConfirm_FeedbackFailureIsSoft(t *testing.T) {
	reporter := &fakeReporter{err: types.NewAppError(types.ErrCodeTelemetryFailed, "klant down", nil)}
	h := NewNotifyHandler(reporter, &fakePreviewer{}, discardLogger())

	rec := serve(h, http.MethodPost, "/v1/notify/confirm", confirmBody(encodedReference(t, testPartyURI), "delivered", "email"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Feedback)
}

func TestHandleConfirm_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   types.ErrorCode
	}{
		{"malformed", `{"id":`, http.StatusBadRequest, types.ErrCodeValidationInvalidJSON},
		{"missing reference", `{"id":"n-1","status":"delivered","notification_type":"email"}`, http.StatusUnprocessableEntity, types.ErrCodeValidationInvalidEvent},
		{"unknown type", confirmBody("abc", "delivered", "letter"), http.StatusUnprocessableEntity, types.ErrCodeValidationInvalidEvent},
		{"reference not base64", confirmBody("!!!", "delivered", "email"), http.StatusUnprocessableEntity, types.ErrCodeValidationReference},
		{"reference without party", "", http.StatusUnprocessableEntity, types.ErrCodeValidationReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if body == "" {
				body = confirmBody(encodedReference(t, ""), "delivered", "email")
			}
			reporter := &fakeReporter{}
			h := NewNotifyHandler(reporter, &fakePreviewer{}, discardLogger())

			rec := serve(h, http.MethodPost, "/v1/notify/confirm", body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp core.APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.wantCode), resp.Error.Code)
			assert.Empty(t, reporter.completions)
		})
	}
}

func TestHandlePreview(t *testing.T) {
	previewer := &fakePreviewer{result: notify.TemplateResult{Success: true, Subject: "Uw zaak", Body: "Beste Jan"}}
	h := NewNotifyHandler(&fakeReporter{}, previewer, discardLogger())

	rec := serve(h, http.MethodPost, "/v1/templates/tpl-1/preview", `{"personalisation":{"klant.voornaam":"Jan"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"template_id":"tpl-1","subject":"Uw zaak","body":"Beste Jan"}}`, rec.Body.String())
	assert.Equal(t, "tpl-1", previewer.templateID)
	assert.Equal(t, "Jan", previewer.personalization["klant.voornaam"])
}

func TestHandlePreview_Errors(t *testing.T) {
	previewer := &fakePreviewer{result: notify.TemplateResult{ErrorMessage: "template not found"}}
	h := NewNotifyHandler(&fakeReporter{}, previewer, discardLogger())

	rec := serve(h, http.MethodPost, "/v1/templates/tpl-1/preview", `{"personalisation":{}}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "template not found")

	rec = serve(h, http.MethodPost, "/v1/templates/tpl-1/preview", `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
