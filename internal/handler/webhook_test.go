package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/gateway"
)

const testWebhookSecret = "whsec_test_secret"

type mockDispatcher struct {
	outcome domain.DispatchOutcome
	err     error
	calls   int
	lastID  string
}

func (m *mockDispatcher) Dispatch(_ context.Context, event *domain.Event) (domain.DispatchOutcome, error) {
	m.calls++
	m.lastID = event.ID
	return m.outcome, m.err
}

type mockNotifier struct {
	calls int
	last  domain.DispatchOutcome
}

func (m *mockNotifier) PaymentApplied(outcome domain.DispatchOutcome, _ *domain.Event) {
	m.calls++
	m.last = outcome
}

func depositEventBody(t *testing.T) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   "evt_wh_001",
		"type": "payment_intent.succeeded",
		"data": map[string]any{
			"object": map[string]any{
				"id":     "pi_wh_001",
				"amount": 10000,
				"metadata": map[string]any{
					"reference_id":   "AF12345678",
					"type":           "booking_deposit",
					"customer_email": "ama@test.com",
				},
			},
		},
	})
	require.NoError(t, err)
	return string(body)
}

func postWebhook(h *WebhookHandler, body, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	rec := httptest.NewRecorder()
	h.HandleGatewayEvent(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestHandleGatewayEvent_AppliedAcknowledgesAndNotifies(t *testing.T) {
	dispatcher := &mockDispatcher{outcome: domain.DispatchOutcome{
		Kind:          domain.OutcomeApplied,
		ReferenceKind: domain.ReferenceKindBooking,
		ReferenceID:   "AF12345678",
		NewStatus:     "confirmed",
	}}
	notifier := &mockNotifier{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, notifier)

	body := depositEventBody(t)
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, 1, dispatcher.calls)
	assert.Equal(t, "evt_wh_001", dispatcher.lastID)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "AF12345678", notifier.last.ReferenceID)
}

func TestHandleGatewayEvent_AcknowledgedWithoutNotification(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.OutcomeKind
	}{
		{"replay", domain.OutcomeReplay},
		{"ignored", domain.OutcomeIgnored},
		{"unknown reference", domain.OutcomeUnknownReference},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &mockDispatcher{outcome: domain.DispatchOutcome{Kind: tc.outcome}}
			notifier := &mockNotifier{}
			h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, notifier)

			body := depositEventBody(t)
			rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), testWebhookSecret))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"received":true}`, rec.Body.String())
			assert.Equal(t, 0, notifier.calls)
		})
	}
}

func TestHandleGatewayEvent_InvalidSignature(t *testing.T) {
	dispatcher := &mockDispatcher{}
	notifier := &mockNotifier{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, notifier)

	body := depositEventBody(t)
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), "whsec_wrong_secret"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SIGNATURE", decodeErrorCode(t, rec))
	assert.Equal(t, 0, dispatcher.calls)
	assert.Equal(t, 0, notifier.calls)
}

func TestHandleGatewayEvent_MissingSignatureHeader(t *testing.T) {
	dispatcher := &mockDispatcher{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, &mockNotifier{})

	rec := postWebhook(h, depositEventBody(t), "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_WEBHOOK", decodeErrorCode(t, rec))
	assert.Equal(t, 0, dispatcher.calls)
}

func TestHandleGatewayEvent_StaleTimestamp(t *testing.T) {
	dispatcher := &mockDispatcher{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, &mockNotifier{})

	body := depositEventBody(t)
	stale := time.Now().Add(-30 * time.Minute).Unix()
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), stale, testWebhookSecret))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "STALE_WEBHOOK", decodeErrorCode(t, rec))
	assert.Equal(t, 0, dispatcher.calls)
}

func TestHandleGatewayEvent_SignedButMalformedBody(t *testing.T) {
	dispatcher := &mockDispatcher{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, &mockNotifier{})

	body := `{"type":"payment_intent.succeeded"}` // no event id
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), testWebhookSecret))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_WEBHOOK", decodeErrorCode(t, rec))
	assert.Equal(t, 0, dispatcher.calls)
}

func TestHandleGatewayEvent_MalformedOutcome(t *testing.T) {
	dispatcher := &mockDispatcher{outcome: domain.DispatchOutcome{Kind: domain.OutcomeMalformed}}
	notifier := &mockNotifier{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, notifier)

	body := depositEventBody(t)
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), testWebhookSecret))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_WEBHOOK", decodeErrorCode(t, rec))
	assert.Equal(t, 0, notifier.calls)
}

func TestHandleGatewayEvent_DispatchErrorReturns500(t *testing.T) {
	dispatcher := &mockDispatcher{err: fmt.Errorf("apply: %w", errors.New("connection reset"))}
	notifier := &mockNotifier{}
	h := NewWebhookHandler(gateway.NewVerifier(testWebhookSecret, gateway.DefaultTolerance), dispatcher, notifier)

	body := depositEventBody(t)
	rec := postWebhook(h, body, gateway.SignatureHeader([]byte(body), time.Now().Unix(), testWebhookSecret))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeErrorCode(t, rec))
	assert.Equal(t, 0, notifier.calls)
}
