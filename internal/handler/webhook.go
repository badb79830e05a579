package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/logging"
)

type eventVerifier interface {
	Verify(rawBody []byte, sigHeader string) (*domain.Event, error)
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event *domain.Event) (domain.DispatchOutcome, error)
}

type paymentNotifier interface {
	PaymentApplied(outcome domain.DispatchOutcome, event *domain.Event)
}

// WebhookHandler receives gateway events. The body must reach the verifier as
// the exact raw bytes the gateway signed, so this route has no JSON parsing
// ahead of it.
type WebhookHandler struct {
	verifier   eventVerifier
	dispatcher eventDispatcher
	notifier   paymentNotifier
}

func NewWebhookHandler(verifier eventVerifier, dispatcher eventDispatcher, notifier paymentNotifier) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		notifier:   notifier,
	}
}

// HandleGatewayEvent acknowledges with 200 {"received":true} whenever the
// gateway should stop retrying: applied, replayed, ignored, and
// unknown-reference outcomes all qualify. Verification failures and missing
// correlation metadata return 400 so a config problem keeps surfacing.
func (h *WebhookHandler) HandleGatewayEvent(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	event, err := h.verifier.Verify(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadSignature):
			log.Warn("webhook signature verification failed")
			RespondAppError(w, ErrInvalidSignature, nil)
		case errors.Is(err, domain.ErrStaleTimestamp):
			log.Warn("stale webhook rejected")
			RespondAppError(w, ErrStaleWebhook, nil)
		default:
			log.Warn("malformed webhook rejected", "error", err)
			RespondAppError(w, ErrMalformedWebhook, nil)
		}
		return
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), event)
	if err != nil {
		log.Error("webhook dispatch failed", "event_id", event.ID, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	switch outcome.Kind {
	case domain.OutcomeMalformed:
		RespondAppError(w, ErrMalformedWebhook, nil)
		return
	case domain.OutcomeApplied:
		h.notifier.PaymentApplied(outcome, event)
	case domain.OutcomeReplay:
		log.Info("replayed webhook suppressed", "event_id", event.ID)
	case domain.OutcomeUnknownReference:
		// Acknowledged anyway: retry storms against a record that will
		// never appear help nobody, and the warning is already logged.
	}

	RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
