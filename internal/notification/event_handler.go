package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-management/internal/core/events"
)

// EventHandler turns request lifecycle events into outbound mail. Wired to
// the event bus, so mail failures surface only in the bus's error log.
type EventHandler struct {
	mailer Mailer
	logger *slog.Logger
}

func NewEventHandler(mailer Mailer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		mailer: mailer,
		logger: logger,
	}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRequestSubmitted, h.HandleRequestSubmitted)
	bus.Subscribe(events.EventTypeRequestApproved, h.HandleRequestApproved)
	bus.Subscribe(events.EventTypeRequestRejected, h.HandleRequestRejected)
}

func (h *EventHandler) HandleRequestSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.RequestSubmittedEvent)
	if !ok {
		return fmt.Errorf("expected RequestSubmittedEvent, got %T", event)
	}

	body := fmt.Sprintf(
		"<p>User <b>%s</b> requested access to: <b>%s</b></p><p>Please log in to approve or reject the request.</p>",
		submitted.RequesterName, submitted.PermissionName)

	var failed int
	for _, email := range submitted.AdminEmails {
		if err := h.mailer.Send(email, "New Permission Request", body); err != nil {
			failed++
			h.logger.Error("admin notification failed",
				"request_id", submitted.RequestID,
				"recipient", email,
				"error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d admin notifications failed", failed, len(submitted.AdminEmails))
	}
	return nil
}

func (h *EventHandler) HandleRequestApproved(ctx context.Context, event events.Event) error {
	reviewed, ok := event.(*events.RequestReviewedEvent)
	if !ok {
		return fmt.Errorf("expected RequestReviewedEvent, got %T", event)
	}

	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your request for <b>%s</b> has been <strong>Approved</strong> by Admin.</p>",
		reviewed.RequesterName, reviewed.PermissionName)

	return h.mailer.Send(reviewed.RequesterEmail, "Your Permission Request was Approved", body)
}

func (h *EventHandler) HandleRequestRejected(ctx context.Context, event events.Event) error {
	reviewed, ok := event.(*events.RequestReviewedEvent)
	if !ok {
		return fmt.Errorf("expected RequestReviewedEvent, got %T", event)
	}

	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your request for <b>%s</b> has been <strong>Rejected</strong>.</p><p>Reason: %s</p>",
		reviewed.RequesterName, reviewed.PermissionName, reviewed.RejectionReason)

	return h.mailer.Send(reviewed.RequesterEmail, "Your Permission Request was Rejected", body)
}
