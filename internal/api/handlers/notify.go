package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omc/internal/core"
	"omc/internal/external"
	"omc/internal/notify"
	"omc/internal/serialization"
	"omc/internal/telemetry"
	"omc/internal/types"
)

// CompletionReporter registers the final delivery state of a message.
type CompletionReporter interface {
	ReportCompletion(ctx context.Context, c telemetry.Completion) (string, error)
}

// TemplatePreviewer renders a provider template.
type TemplatePreviewer interface {
	PreviewTemplate(ctx context.Context, templateID string, personalization map[string]any) notify.TemplateResult
}

// NotifyHandler serves the delivery provider facing endpoints.
type NotifyHandler struct {
	reporter  CompletionReporter
	previewer TemplatePreviewer
	logger    *slog.Logger
}

// NewNotifyHandler creates a NotifyHandler.
func NewNotifyHandler(reporter CompletionReporter, previewer TemplatePreviewer, logger *slog.Logger) *NotifyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyHandler{
		reporter:  reporter,
		previewer: previewer,
		logger:    logger,
	}
}

// RegisterRoutes mounts the callback and the preview. Both live under /v1.
func (h *NotifyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notify/confirm", h.HandleConfirm)
	r.Post("/templates/{id}/preview", h.HandlePreview)
}

// ConfirmResponse is returned to the delivery provider.
type ConfirmResponse struct {
	Delivered bool   `json:"delivered"`
	Feedback  string `json:"feedback,omitempty"`
	Message   string `json:"message"`
}

// HandleConfirm handles POST /v1/notify/confirm.
//
// The provider echoes the reference attached at send time. It is decoded to
// find the recipient and the case, and the final state is reported as
// feedback. Feedback failures are soft: the callback is still acknowledged.
func (h *NotifyHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	raw, err := core.ReadBody(w, r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	status, err := serialization.Deserialize[external.DeliveryStatus](raw)
	if err != nil {
		code := types.ErrCodeValidationInvalidEvent
		if errors.Is(err, serialization.ErrMalformed) {
			code = types.ErrCodeValidationInvalidJSON
		}
		core.Error(w, r, types.NewAppError(code, "delivery status could not be decoded", err))
		return
	}

	ref, err := types.DecodeNotifyReference(status.Reference)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if ref.PartyID == "" {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationReference,
			"reference does not identify a recipient",
			nil,
			map[string]any{"notification_id": status.ID},
		))
		return
	}

	method := types.NotifyMethod(status.NotificationType)
	message := fmt.Sprintf("%s notification %s", method, status.Status)
	resp := ConfirmResponse{Delivered: status.Delivered(), Message: message}

	feedback, err := h.reporter.ReportCompletion(r.Context(), telemetry.Completion{
		Party:     types.CommonPartyData{URI: ref.PartyID},
		CaseURI:   ref.CaseID,
		Method:    method,
		Message:   message,
		Succeeded: status.Delivered(),
		SourceOrg: ref.Notification.Attributes.SourceOrganization,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "delivery feedback not registered",
			"notification_id", status.ID,
			"party", ref.PartyID,
			"error", err,
		)
	}
	resp.Feedback = feedback

	h.logger.InfoContext(r.Context(), "delivery status received",
		"notification_id", status.ID,
		"method", method,
		"status", status.Status,
		"case", ref.CaseID,
	)
	core.JSON(w, r, http.StatusOK, resp)
}

// PreviewRequest is the body of a template preview.
type PreviewRequest struct {
	Personalisation map[string]any `json:"personalisation"`
}

// PreviewResponse is the rendered template.
type PreviewResponse struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body"`
}

// HandlePreview handles POST /v1/templates/{id}/preview.
func (h *NotifyHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	if templateID == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField, "template id is required", nil))
		return
	}

	var req PreviewRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	result := h.previewer.PreviewTemplate(r.Context(), templateID, req.Personalisation)
	if !result.Success {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeDeliveryRejected,
			result.ErrorMessage,
			nil,
			map[string]any{"template_id": templateID},
		))
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: PreviewResponse{
		TemplateID: templateID,
		Subject:    result.Subject,
		Body:       result.Body,
	}})
}
