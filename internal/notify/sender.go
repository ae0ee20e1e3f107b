// Package notify isolates the delivery provider. Provider errors never cross
// this boundary: every call yields a result value.
package notify

import (
	"context"
	"strings"

	"omc/internal/external"
	"omc/internal/types"
)

// Package is one message to be delivered.
type Package struct {
	// Address is the email address or telephone number of the recipient.
	Address         string
	TemplateID      string
	Personalization map[string]any
	Reference       types.NotifyReference
}

// SendResult is the normalized outcome of a send.
type SendResult struct {
	Success        bool
	ErrorMessage   string
	NotificationID string
}

// TemplateResult is the normalized outcome of a template preview.
type TemplateResult struct {
	Success      bool
	ErrorMessage string
	Subject      string
	Body         string
}

// Sender delivers notifications.
type Sender interface {
	SendEmail(ctx context.Context, pkg Package) SendResult
	SendSms(ctx context.Context, pkg Package) SendResult
	PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) TemplateResult
}

// NotifySender implements Sender over an external.NotifyProvider.
type NotifySender struct {
	provider external.NotifyProvider
	logger   types.Logger
}

// NewNotifySender creates a NotifySender.
func NewNotifySender(provider external.NotifyProvider, logger types.Logger) *NotifySender {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &NotifySender{provider: provider, logger: logger}
}

// SendEmail implements Sender.
func (s *NotifySender) SendEmail(ctx context.Context, pkg Package) SendResult {
	if strings.TrimSpace(pkg.Address) == "" {
		return SendResult{ErrorMessage: "recipient has no email address"}
	}
	reference, err := pkg.Reference.Encode()
	if err != nil {
		return SendResult{ErrorMessage: err.Error()}
	}

	receipt, err := s.provider.SendEmail(ctx, external.EmailRequest{
		EmailAddress:    pkg.Address,
		TemplateID:      pkg.TemplateID,
		Personalisation: pkg.Personalization,
		Reference:       reference,
	})
	return s.result(types.NotifyMethodEmail, pkg.TemplateID, receipt, err)
}

// SendSms implements Sender.
func (s *NotifySender) SendSms(ctx context.Context, pkg Package) SendResult {
	if strings.TrimSpace(pkg.Address) == "" {
		return SendResult{ErrorMessage: "recipient has no telephone number"}
	}
	reference, err := pkg.Reference.Encode()
	if err != nil {
		return SendResult{ErrorMessage: err.Error()}
	}

	receipt, err := s.provider.SendSms(ctx, external.SmsRequest{
		PhoneNumber:     pkg.Address,
		TemplateID:      pkg.TemplateID,
		Personalisation: pkg.Personalization,
		Reference:       reference,
	})
	return s.result(types.NotifyMethodSms, pkg.TemplateID, receipt, err)
}

// PreviewTemplate implements Sender.
func (s *NotifySender) PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) TemplateResult {
	preview, err := s.provider.PreviewTemplate(ctx, templateID, personalization)
	if err != nil {
		s.logger.Warn("template preview failed", "template_id", templateID, "error", err)
		return TemplateResult{ErrorMessage: err.Error()}
	}
	return TemplateResult{
		Success: true,
		Subject: preview.Subject,
		Body:    preview.Body,
	}
}

func (s *NotifySender) result(method types.NotifyMethod, templateID string, receipt *external.NotificationReceipt, err error) SendResult {
	if err != nil {
		s.logger.Warn("delivery failed",
			"method", method,
			"template_id", templateID,
			"code", types.CodeOf(err),
			"error", err,
		)
		return SendResult{ErrorMessage: err.Error()}
	}
	s.logger.Info("notification queued",
		"method", method,
		"template_id", templateID,
		"notification_id", receipt.ID,
	)
	return SendResult{Success: true, NotificationID: receipt.ID}
}

var _ Sender = (*NotifySender)(nil)
