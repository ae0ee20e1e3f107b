package external

import "context"

// ---------------------------------------------------------------------------
// Delivery Integration (NotifyNL)
// ---------------------------------------------------------------------------

// NotifyProvider abstracts the delivery provider. Implementations return
// AppErrors with the delivery_* or upstream_* codes; callers normalize them.
type NotifyProvider interface {
	// SendEmail queues an email built from a provider template.
	SendEmail(ctx context.Context, req EmailRequest) (*NotificationReceipt, error)

	// SendSms queues a text message built from a provider template.
	SendSms(ctx context.Context, req SmsRequest) (*NotificationReceipt, error)

	// PreviewTemplate renders a template with personalisation without sending.
	PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error)
}

// EmailRequest is the payload of POST /v2/notifications/email.
type EmailRequest struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

// SmsRequest is the payload of POST /v2/notifications/sms.
type SmsRequest struct {
	PhoneNumber     string         `json:"phone_number"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
	Reference       string         `json:"reference,omitempty"`
}

// NotificationReceipt is the provider's acknowledgement of a queued message.
type NotificationReceipt struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	URI       string `json:"uri"`
	Template  struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	} `json:"template"`
}

// TemplatePreview is a rendered template.
type TemplatePreview struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Version int    `json:"version"`
	Body    string `json:"body"`
	Subject string `json:"subject,omitempty"`
}

// DeliveryStatus is the callback NotifyNL posts once a message reached its
// final state.
type DeliveryStatus struct {
	ID               string `json:"id" validate:"required"`
	Reference        string `json:"reference" validate:"required"`
	To               string `json:"to"`
	Status           string `json:"status" validate:"required"`
	CreatedAt        string `json:"created_at"`
	CompletedAt      string `json:"completed_at"`
	SentAt           string `json:"sent_at"`
	NotificationType string `json:"notification_type" validate:"required,oneof=email sms"`
}

// Delivered reports whether the provider delivered the message.
func (d DeliveryStatus) Delivered() bool {
	return d.Status == "delivered"
}
