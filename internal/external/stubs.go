package external

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Stub Implementations
//
// Stubs allow the gateway to boot in local/test mode without delivery
// credentials. They log every call and return predictable values.
// ---------------------------------------------------------------------------

// StubNotifyProvider implements NotifyProvider by logging calls and returning
// a fake receipt. Used when config.IsTestMode is true or APP_ENV=local.
type StubNotifyProvider struct {
	logger *slog.Logger
}

// NewStubNotifyProvider creates a new StubNotifyProvider.
func NewStubNotifyProvider(logger *slog.Logger) *StubNotifyProvider {
	return &StubNotifyProvider{logger: logger}
}

func (s *StubNotifyProvider) SendEmail(ctx context.Context, req EmailRequest) (*NotificationReceipt, error) {
	s.logger.InfoContext(ctx, "stub: SendEmail called",
		"template_id", req.TemplateID,
		"personalisation_keys", len(req.Personalisation),
	)
	return stubReceipt(req.Reference), nil
}

func (s *StubNotifyProvider) SendSms(ctx context.Context, req SmsRequest) (*NotificationReceipt, error) {
	s.logger.InfoContext(ctx, "stub: SendSms called",
		"template_id", req.TemplateID,
		"personalisation_keys", len(req.Personalisation),
	)
	return stubReceipt(req.Reference), nil
}

func (s *StubNotifyProvider) PreviewTemplate(ctx context.Context, templateID string, personalisation map[string]any) (*TemplatePreview, error) {
	s.logger.InfoContext(ctx, "stub: PreviewTemplate called",
		"template_id", templateID,
	)

	keys := make([]string, 0, len(personalisation))
	for k := range personalisation {
		keys = append(keys, "(("+k+"))")
	}
	sort.Strings(keys)
	return &TemplatePreview{
		ID:      templateID,
		Type:    "email",
		Version: 1,
		Body:    strings.Join(keys, " "),
		Subject: fmt.Sprintf("stub preview of %s", templateID),
	}, nil
}

func stubReceipt(reference string) *NotificationReceipt {
	id := uuid.NewString()
	return &NotificationReceipt{
		ID:        id,
		Reference: reference,
		URI:       "https://notify.stub.local/v2/notifications/" + id,
	}
}

var _ NotifyProvider = (*StubNotifyProvider)(nil)
