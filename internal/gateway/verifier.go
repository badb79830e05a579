package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

const DefaultTolerance = 5 * time.Minute

// Verifier authenticates raw webhook payloads against the shared signing
// secret and decodes them into typed domain events. The signature header
// follows the gateway's scheme: "t=<unix>,v1=<hex hmac-sha256 of t.body>".
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance, now: time.Now}
}

// Verify checks the signature over the exact raw bytes and, if authentic and
// fresh, decodes the event envelope. Unknown event types decode to
// domain.Unrecognized rather than erroring.
func (v *Verifier) Verify(rawBody []byte, sigHeader string) (*domain.Event, error) {
	ts, candidates, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return nil, fmt.Errorf("Verify: %w", domain.ErrStaleTimestamp)
	}

	expected := ComputeSignature(rawBody, ts, v.secret)
	match := false
	for _, c := range candidates {
		if hmac.Equal([]byte(expected), []byte(c)) {
			match = true
		}
	}
	if !match {
		return nil, fmt.Errorf("Verify: %w", domain.ErrBadSignature)
	}

	return decodeEvent(rawBody)
}

// ComputeSignature returns the hex HMAC-SHA256 of "<ts>.<body>". Exported so
// tooling and tests can produce valid signatures.
func ComputeSignature(body []byte, ts int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader renders a complete header value for the given body and
// timestamp. Used by the gateway simulator and tests.
func SignatureHeader(body []byte, ts int64, secret string) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(body, ts, secret))
}

func parseSignatureHeader(header string) (ts int64, candidates []string, err error) {
	if header == "" {
		return 0, nil, fmt.Errorf("parseSignatureHeader: empty header: %w", domain.ErrMalformedEvent)
	}

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("parseSignatureHeader: bad timestamp: %w", domain.ErrMalformedEvent)
			}
		case "v1":
			candidates = append(candidates, value)
		}
	}

	if ts == 0 || len(candidates) == 0 {
		return 0, nil, fmt.Errorf("parseSignatureHeader: missing t or v1: %w", domain.ErrMalformedEvent)
	}
	return ts, candidates, nil
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSessionObject struct {
	ID            string               `json:"id"`
	PaymentStatus string               `json:"payment_status"`
	AmountTotal   int64                `json:"amount_total"`
	Metadata      domain.EventMetadata `json:"metadata"`
}

type paymentIntentObject struct {
	ID               string               `json:"id"`
	Amount           int64                `json:"amount"`
	Metadata         domain.EventMetadata `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

type chargeObject struct {
	ID             string               `json:"id"`
	AmountRefunded int64                `json:"amount_refunded"`
	Metadata       domain.EventMetadata `json:"metadata"`
}

func decodeEvent(rawBody []byte) (*domain.Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("decodeEvent: %w", domain.ErrMalformedEvent)
	}
	if env.ID == "" || env.Type == "" {
		return nil, fmt.Errorf("decodeEvent: missing id or type: %w", domain.ErrMalformedEvent)
	}

	event := &domain.Event{ID: env.ID, RawType: env.Type}

	switch env.Type {
	case "checkout.session.completed":
		var obj checkoutSessionObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decodeEvent: checkout session: %w", domain.ErrMalformedEvent)
		}
		event.Data = domain.CheckoutCompleted{
			SessionID:     obj.ID,
			PaymentStatus: obj.PaymentStatus,
			AmountCents:   obj.AmountTotal,
			Metadata:      obj.Metadata,
		}
	case "payment_intent.succeeded":
		var obj paymentIntentObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decodeEvent: payment intent: %w", domain.ErrMalformedEvent)
		}
		event.Data = domain.DepositSucceeded{
			IntentID:    obj.ID,
			AmountCents: obj.Amount,
			Metadata:    obj.Metadata,
		}
	case "payment_intent.payment_failed":
		var obj paymentIntentObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decodeEvent: payment intent: %w", domain.ErrMalformedEvent)
		}
		reason := "unknown"
		if obj.LastPaymentError != nil && obj.LastPaymentError.Message != "" {
			reason = obj.LastPaymentError.Message
		}
		event.Data = domain.PaymentFailed{
			IntentID:      obj.ID,
			FailureReason: reason,
			Metadata:      obj.Metadata,
		}
	case "charge.refunded":
		var obj chargeObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("decodeEvent: charge: %w", domain.ErrMalformedEvent)
		}
		event.Data = domain.ChargeRefunded{
			ChargeID:    obj.ID,
			AmountCents: obj.AmountRefunded,
			Metadata:    obj.Metadata,
		}
	default:
		event.Data = domain.Unrecognized{}
	}

	return event, nil
}
