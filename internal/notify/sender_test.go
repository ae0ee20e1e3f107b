package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omc/internal/external"
	"omc/internal/types"
)

type fakeProvider struct {
	emails   []external.EmailRequest
	sms      []external.SmsRequest
	emailErr error
	smsErr   error
	preview  *external.TemplatePreview
}

func (f *fakeProvider) SendEmail(_ context.Context, req external.EmailRequest) (*external.NotificationReceipt, error) {
	f.emails = append(f.emails, req)
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	return &external.NotificationReceipt{ID: "email-1", Reference: req.Reference}, nil
}

func (f *fakeProvider) SendSms(_ context.Context, req external.SmsRequest) (*external.NotificationReceipt, error) {
	f.sms = append(f.sms, req)
	if f.smsErr != nil {
		return nil, f.smsErr
	}
	return &external.NotificationReceipt{ID: "sms-1", Reference: req.Reference}, nil
}

func (f *fakeProvider) PreviewTemplate(_ context.Context, templateID string, _ map[string]any) (*external.TemplatePreview, error) {
	if f.preview == nil {
		return nil, types.NewAppError(types.ErrCodeDeliveryRejected, "template "+templateID+" not found", nil)
	}
	return f.preview, nil
}

func testPackage(address string) Package {
	return Package{
		Address:         address,
		TemplateID:      "tpl-1",
		Personalization: map[string]any{"klant.voornaam": "Jan"},
		Reference: types.NotifyReference{
			Notification: types.NotificationEvent{Channel: types.ChannelCases},
			CaseID:       "case-1",
			PartyID:      "party-1",
		},
	}
}

func TestNotifySender_SendEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := &fakeProvider{}
		sender := NewNotifySender(provider, nil)

		res := sender.SendEmail(context.Background(), testPackage("jan@example.nl"))

		assert.True(t, res.Success)
		assert.Empty(t, res.ErrorMessage)
		assert.Equal(t, "email-1", res.NotificationID)
		require.Len(t, provider.emails, 1)
		assert.Equal(t, "jan@example.nl", provider.emails[0].EmailAddress)
		assert.Equal(t, "tpl-1", provider.emails[0].TemplateID)

		ref, err := types.DecodeNotifyReference(provider.emails[0].Reference)
		require.NoError(t, err)
		assert.Equal(t, "case-1", ref.CaseID)
		assert.Equal(t, "party-1", ref.PartyID)
	})

	t.Run("ProviderErrorBecomesResult", func(t *testing.T) {
		provider := &fakeProvider{emailErr: types.NewAppError(types.ErrCodeDeliveryFailed, "NotifyNL error (500)", nil)}
		sender := NewNotifySender(provider, nil)

		res := sender.SendEmail(context.Background(), testPackage("jan@example.nl"))

		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "NotifyNL error (500)")
	})

	t.Run("PlainErrorBecomesResult", func(t *testing.T) {
		provider := &fakeProvider{emailErr: errors.New("connection reset")}
		sender := NewNotifySender(provider, nil)

		res := sender.SendEmail(context.Background(), testPackage("jan@example.nl"))

		assert.False(t, res.Success)
		assert.Equal(t, "connection reset", res.ErrorMessage)
	})

	t.Run("MissingAddressSkipsProvider", func(t *testing.T) {
		provider := &fakeProvider{}
		sender := NewNotifySender(provider, nil)

		res := sender.SendEmail(context.Background(), testPackage("  "))

		assert.False(t, res.Success)
		assert.NotEmpty(t, res.ErrorMessage)
		assert.Empty(t, provider.emails)
	})
}

func TestNotifySender_SendSms(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := &fakeProvider{}
		sender := NewNotifySender(provider, nil)

		res := sender.SendSms(context.Background(), testPackage("+31612345678"))

		assert.True(t, res.Success)
		require.Len(t, provider.sms, 1)
		assert.Equal(t, "+31612345678", provider.sms[0].PhoneNumber)
	})

	t.Run("Failure", func(t *testing.T) {
		provider := &fakeProvider{smsErr: types.NewAppError(types.ErrCodeDeliveryRejected, "invalid phone number", nil)}
		sender := NewNotifySender(provider, nil)

		res := sender.SendSms(context.Background(), testPackage("+31612345678"))

		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "invalid phone number")
	})

	t.Run("MissingAddressSkipsProvider", func(t *testing.T) {
		provider := &fakeProvider{}
		sender := NewNotifySender(provider, nil)

		res := sender.SendSms(context.Background(), testPackage(""))

		assert.False(t, res.Success)
		assert.Empty(t, provider.sms)
	})
}

func TestNotifySender_PreviewTemplate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := &fakeProvider{preview: &external.TemplatePreview{Subject: "Uw zaak", Body: "Beste Jan"}}
		sender := NewNotifySender(provider, nil)

		res := sender.PreviewTemplate(context.Background(), "tpl-1", map[string]any{"klant.voornaam": "Jan"})

		assert.True(t, res.Success)
		assert.Equal(t, "Uw zaak", res.Subject)
		assert.Equal(t, "Beste Jan", res.Body)
	})

	t.Run("Failure", func(t *testing.T) {
		sender := NewNotifySender(&fakeProvider{}, nil)

		res := sender.PreviewTemplate(context.Background(), "tpl-x", nil)

		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "tpl-x")
	})
}
