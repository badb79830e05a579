// webhook-sim signs and posts a sample gateway event at a running API
// instance, mimicking how the gateway delivers webhooks. Useful for local
// end-to-end checks without gateway credentials.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/afroflavours/restaurant-api/internal/gateway"
	"github.com/afroflavours/restaurant-api/internal/logging"
)

func main() {
	var (
		target      = flag.String("target", "http://localhost:8080/api/v1/payments/webhook", "webhook endpoint URL")
		secret      = flag.String("secret", os.Getenv("STRIPE_WEBHOOK_SECRET"), "webhook signing secret")
		eventID     = flag.String("event-id", fmt.Sprintf("evt_sim_%d", time.Now().UnixNano()), "gateway event id")
		eventType   = flag.String("type", "payment_intent.succeeded", "gateway event type")
		depositType = flag.String("deposit-type", "booking_deposit", "metadata type for deposit events")
		refID       = flag.String("ref", "", "reference id (booking ref, quote ref, or order id)")
		refKind     = flag.String("kind", "booking", "reference kind (booking, order, catering)")
		email       = flag.String("email", "guest@example.com", "customer email in metadata")
		name        = flag.String("name", "Test Guest", "customer name in metadata")
		amount      = flag.Int64("amount", 5000, "amount in cents")
	)
	flag.Parse()

	logging.Init("webhook-sim", "info", "development")

	if *secret == "" {
		slog.Error("no signing secret: pass -secret or set STRIPE_WEBHOOK_SECRET")
		os.Exit(1)
	}
	if *refID == "" {
		slog.Error("no reference id: pass -ref")
		os.Exit(1)
	}

	body, err := buildEvent(*eventID, *eventType, *depositType, *refID, *refKind, *email, *name, *amount)
	if err != nil {
		slog.Error("failed to build event", "error", err)
		os.Exit(1)
	}

	ts := time.Now().Unix()
	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to build request", "error", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", gateway.SignatureHeader(body, ts, *secret))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Error("request failed", "error", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	slog.Info("webhook delivered",
		"event_id", *eventID,
		"type", *eventType,
		"status", resp.StatusCode,
		"response", string(respBody),
	)
}

func buildEvent(eventID, eventType, depositType, refID, refKind, email, name string, amount int64) ([]byte, error) {
	metadata := map[string]string{
		"reference_id":   refID,
		"reference_kind": refKind,
		"customer_email": email,
		"customer_name":  name,
	}

	var object map[string]any
	switch eventType {
	case "checkout.session.completed":
		object = map[string]any{
			"id":             fmt.Sprintf("cs_sim_%d", time.Now().UnixNano()),
			"payment_status": "paid",
			"amount_total":   amount,
			"metadata":       metadata,
		}
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		metadata["type"] = depositType
		object = map[string]any{
			"id":       fmt.Sprintf("pi_sim_%d", time.Now().UnixNano()),
			"amount":   amount,
			"metadata": metadata,
		}
	case "charge.refunded":
		object = map[string]any{
			"id":              fmt.Sprintf("ch_sim_%d", time.Now().UnixNano()),
			"amount_refunded": amount,
			"metadata":        metadata,
		}
	default:
		object = map[string]any{"metadata": metadata}
	}

	return json.Marshal(map[string]any{
		"id":   eventID,
		"type": eventType,
		"data": map[string]any{"object": object},
	})
}
