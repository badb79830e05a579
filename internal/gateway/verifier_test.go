package gateway

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

const testSigningSecret = "whsec_test_secret"

func eventBody(t *testing.T, eventType string, object map[string]any) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   "evt_test_001",
		"type": eventType,
		"data": map[string]any{"object": object},
	})
	require.NoError(t, err)
	return body
}

func TestVerify_ValidCheckoutSession(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "checkout.session.completed", map[string]any{
		"id":             "cs_test_123",
		"payment_status": "paid",
		"amount_total":   4500,
		"metadata": map[string]any{
			"reference_id":   "a7f3e9c2-0000-0000-0000-000000000000",
			"reference_kind": "order",
			"customer_email": "ama@test.com",
			"customer_name":  "Ama Mensah",
		},
	})
	ts := time.Now().Unix()

	event, err := v.Verify(body, SignatureHeader(body, ts, testSigningSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_test_001", event.ID)
	assert.Equal(t, "checkout.session.completed", event.RawType)

	data, ok := event.Data.(domain.CheckoutCompleted)
	require.True(t, ok)
	assert.Equal(t, "cs_test_123", data.SessionID)
	assert.Equal(t, "paid", data.PaymentStatus)
	assert.Equal(t, int64(4500), data.AmountCents)
	assert.Equal(t, "ama@test.com", data.Metadata.CustomerEmail)
}

func TestVerify_ValidDeposit(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{
		"id":     "pi_test_456",
		"amount": 10000,
		"metadata": map[string]any{
			"reference_id":   "AF12345678",
			"reference_kind": "booking",
			"type":           "booking_deposit",
			"customer_email": "kofi@test.com",
			"customer_name":  "Kofi Boateng",
		},
	})
	ts := time.Now().Unix()

	event, err := v.Verify(body, SignatureHeader(body, ts, testSigningSecret))
	require.NoError(t, err)

	data, ok := event.Data.(domain.DepositSucceeded)
	require.True(t, ok)
	assert.Equal(t, "pi_test_456", data.IntentID)
	assert.Equal(t, int64(10000), data.AmountCents)
	assert.Equal(t, domain.DepositTypeBooking, data.Metadata.Type)
	assert.Equal(t, "AF12345678", data.Metadata.ReferenceID)
}

func TestVerify_TamperedBody(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{
		"id":     "pi_test_456",
		"amount": 10000,
	})
	ts := time.Now().Unix()
	header := SignatureHeader(body, ts, testSigningSecret)

	// Flip a single byte after signing.
	tampered := append([]byte(nil), body...)
	tampered[len(tampered)/2] ^= 0x01

	_, err := v.Verify(tampered, header)
	require.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{"id": "pi_1"})
	ts := time.Now().Unix()

	_, err := v.Verify(body, SignatureHeader(body, ts, "whsec_other_secret"))
	require.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestVerify_StaleTimestamp(t *testing.T) {
	v := NewVerifier(testSigningSecret, 5*time.Minute)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{"id": "pi_1"})

	tests := []struct {
		name string
		ts   int64
	}{
		{"too old", time.Now().Add(-10 * time.Minute).Unix()},
		{"too far in the future", time.Now().Add(10 * time.Minute).Unix()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(body, SignatureHeader(body, tc.ts, testSigningSecret))
			require.ErrorIs(t, err, domain.ErrStaleTimestamp)
		})
	}
}

func TestVerify_BadHeaders(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{"id": "pi_1"})

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"missing signature", fmt.Sprintf("t=%d", time.Now().Unix())},
		{"missing timestamp", "v1=deadbeef"},
		{"garbage timestamp", "t=notanumber,v1=deadbeef"},
		{"no key value pairs", "deadbeef"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(body, tc.header)
			require.ErrorIs(t, err, domain.ErrMalformedEvent)
		})
	}
}

func TestVerify_MultipleSignatureCandidates(t *testing.T) {
	// During secret rotation the gateway sends one v1 per active secret; any
	// one matching is enough.
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.succeeded", map[string]any{"id": "pi_1"})
	ts := time.Now().Unix()

	header := fmt.Sprintf("t=%d,v1=%s,v1=%s",
		ts,
		ComputeSignature(body, ts, "whsec_retired_secret"),
		ComputeSignature(body, ts, testSigningSecret),
	)

	event, err := v.Verify(body, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_001", event.ID)
}

func TestVerify_MalformedJSON(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	ts := time.Now().Unix()

	tests := []struct {
		name string
		body []byte
	}{
		{"not json", []byte("not json at all")},
		{"missing id", []byte(`{"type":"payment_intent.succeeded","data":{"object":{}}}`)},
		{"missing type", []byte(`{"id":"evt_1","data":{"object":{}}}`)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(tc.body, SignatureHeader(tc.body, ts, testSigningSecret))
			require.ErrorIs(t, err, domain.ErrMalformedEvent)
		})
	}
}

func TestVerify_UnknownTypeDecodesAsUnrecognized(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "customer.subscription.created", map[string]any{"id": "sub_1"})
	ts := time.Now().Unix()

	event, err := v.Verify(body, SignatureHeader(body, ts, testSigningSecret))
	require.NoError(t, err)

	assert.Equal(t, "customer.subscription.created", event.RawType)
	_, ok := event.Data.(domain.Unrecognized)
	assert.True(t, ok)
}

func TestVerify_PaymentFailedReason(t *testing.T) {
	v := NewVerifier(testSigningSecret, DefaultTolerance)
	body := eventBody(t, "payment_intent.payment_failed", map[string]any{
		"id":                 "pi_failed",
		"last_payment_error": map[string]any{"message": "card_declined"},
	})
	ts := time.Now().Unix()

	event, err := v.Verify(body, SignatureHeader(body, ts, testSigningSecret))
	require.NoError(t, err)

	data, ok := event.Data.(domain.PaymentFailed)
	require.True(t, ok)
	assert.Equal(t, "card_declined", data.FailureReason)
}
