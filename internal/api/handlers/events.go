// Package handlers contains the HTTP handlers of the OMC gateway:
//   - the event-source webhook (POST /v1/events/listen)
//   - the delivery provider callback (POST /v1/notify/confirm)
//   - the template preview (POST /v1/templates/{id}/preview)
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omc/internal/core"
	"omc/internal/processing"
	"omc/internal/types"
)

// EventProcessor processes one raw event inline.
type EventProcessor interface {
	Process(ctx context.Context, raw []byte) types.ProcessingResult
}

// EventPublisher hands a validated event to the events worker.
type EventPublisher interface {
	Publish(ctx context.Context, event types.NotificationEvent, raw []byte) (string, error)
}

// EventsHandler receives notifications from the event source. With a
// publisher the event is validated and queued, otherwise it is processed
// inline and the result is returned.
type EventsHandler struct {
	processor EventProcessor
	publisher EventPublisher
	logger    *slog.Logger
}

// NewEventsHandler creates an EventsHandler. publisher may be nil.
func NewEventsHandler(processor EventProcessor, publisher EventPublisher, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		processor: processor,
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterRoutes mounts the webhook under /events.
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/listen", h.HandleListen)
}

// HandleListen handles POST /v1/events/listen.
//
// Inline: the processing result decides the status, so only a Failure makes
// the event source retry. Queued: 202 Accepted once the event is enqueued;
// undecodable events and test events are answered without queueing.
func (h *EventsHandler) HandleListen(w http.ResponseWriter, r *http.Request) {
	raw, err := core.ReadBody(w, r)
	if err != nil {
		core.Result(w, r, types.ResultFromError(err))
		return
	}

	if h.publisher == nil {
		core.Result(w, r, h.processor.Process(r.Context(), raw))
		return
	}

	event, err := processing.DecodeEvent(raw)
	if err != nil {
		core.Result(w, r, types.ResultFromError(err))
		return
	}
	if event.IsTest() {
		core.Result(w, r, types.ProcessingResult{
			Status:      types.StatusSkipped,
			Description: "test notification acknowledged",
			Code:        types.ErrCodeSkipTestEvent,
		})
		return
	}

	messageID, err := h.publisher.Publish(r.Context(), event, raw)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to enqueue event",
			"request_id", types.GetRequestID(r.Context()),
			"error", err,
		)
		core.Result(w, r, types.ResultFromError(err))
		return
	}

	core.JSON(w, r, http.StatusAccepted, QueuedResponse{
		MessageID: messageID,
		RequestID: types.GetRequestID(r.Context()),
	})
}

// QueuedResponse is returned when an event was enqueued.
type QueuedResponse struct {
	MessageID string `json:"message_id"`
	RequestID string `json:"request_id,omitempty"`
}
