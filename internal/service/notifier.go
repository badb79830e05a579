package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

type mailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Notifier owns every fire-and-forget email the service sends. Each send runs
// on its own goroutine with an independent timeout; failures are logged and
// dropped so they can never influence the caller's response.
type Notifier struct {
	mail       mailSender
	adminEmail string
	logger     *slog.Logger
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewNotifier(mail mailSender, adminEmail string, logger *slog.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		mail:       mail,
		adminEmail: adminEmail,
		logger:     logger,
		timeout:    timeout,
	}
}

// Wait blocks until in-flight sends finish. Called on shutdown and by tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// PaymentApplied sends the customer a confirmation for a freshly applied
// transition. Replays never reach here, so gateway retries cannot produce
// duplicate emails.
func (n *Notifier) PaymentApplied(outcome domain.DispatchOutcome, event *domain.Event) {
	to, name := customerFromEvent(event)
	if to == "" {
		n.logger.Debug("no customer email on payment event, skipping notification",
			"event_id", event.ID,
		)
		return
	}

	var subject, body string
	switch outcome.ReferenceKind {
	case domain.ReferenceKindBooking:
		subject = "Booking Payment Confirmed - Afroflavours"
		body = fmt.Sprintf(
			"<h2>Payment Confirmed!</h2><p>Dear %s,</p><p>Your payment has been processed and your booking is confirmed.</p><p><strong>Booking Reference:</strong> %s</p><p>We look forward to serving you!</p><p>Best regards,<br>The Afroflavours Team</p>",
			name, outcome.ReferenceID,
		)
	case domain.ReferenceKindCatering:
		subject = "Catering Deposit Confirmed - Afroflavours"
		body = fmt.Sprintf(
			"<h2>Deposit Received!</h2><p>Dear %s,</p><p>Your catering deposit has been processed and your booking is secured.</p><p><strong>Quote Reference:</strong> %s</p><p>We'll be in touch with final details soon.</p><p>Best regards,<br>The Afroflavours Team</p>",
			name, outcome.ReferenceID,
		)
	case domain.ReferenceKindOrder:
		subject = "Order Payment Confirmed - Afroflavours"
		body = fmt.Sprintf(
			"<h2>Payment Confirmed!</h2><p>Dear %s,</p><p>We've received your payment and your order is being prepared.</p><p><strong>Order Reference:</strong> %s</p><p>Best regards,<br>The Afroflavours Team</p>",
			name, outcome.ReferenceID,
		)
	default:
		return
	}

	n.send(to, subject, body, "payment_applied", event.ID)
}

// BookingCreated confirms receipt of a new booking to the guest and alerts
// the admin inbox.
func (n *Notifier) BookingCreated(b *domain.Booking) {
	body := fmt.Sprintf(
		"<h2>Booking Confirmation</h2><p>Thank you for your booking!</p><p><strong>Reference:</strong> %s</p><p><strong>Date:</strong> %s at %s</p><p><strong>Guests:</strong> %d</p>",
		b.BookingRef, b.Date.Format("2 January 2006"), b.Time, b.Guests,
	)
	n.send(b.Email, "Booking Confirmation - Afroflavours", body, "booking_created", b.BookingRef)

	if n.adminEmail != "" {
		adminBody := fmt.Sprintf("<h2>New booking received</h2><p><strong>Reference:</strong> %s</p><p>%s, %d guests, %s</p>",
			b.BookingRef, b.Name, b.Guests, b.Date.Format("2 January 2006"))
		n.send(n.adminEmail, fmt.Sprintf("New Booking - %s", b.BookingRef), adminBody, "booking_created_admin", b.BookingRef)
	}
}

// CateringRequested confirms receipt of a catering enquiry.
func (n *Notifier) CateringRequested(c *domain.CateringRequest) {
	body := fmt.Sprintf(
		"<h2>Catering Request Received</h2><p>Dear %s,</p><p>Thanks for your enquiry. We'll send a quote shortly.</p><p><strong>Reference:</strong> %s</p>",
		c.Name, c.QuoteRef,
	)
	n.send(c.Email, "Catering Request Received - Afroflavours", body, "catering_requested", c.QuoteRef)
}

// CateringQuoted tells the customer a quote is ready.
func (n *Notifier) CateringQuoted(c *domain.CateringRequest, amountCents int64) {
	body := fmt.Sprintf(
		"<h2>Your Catering Quote</h2><p>Dear %s,</p><p>Your quote for reference %s is $%.2f NZD.</p><p>A deposit secures your date.</p>",
		c.Name, c.QuoteRef, float64(amountCents)/100,
	)
	n.send(c.Email, "Catering Quote - Afroflavours", body, "catering_quoted", c.QuoteRef)
}

func (n *Notifier) send(to, subject, body, kind, ref string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("panic in notification send", "kind", kind, "ref", ref, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mail.Send(ctx, to, subject, body); err != nil {
			n.logger.Warn("notification send failed",
				"kind", kind,
				"ref", ref,
				"to", to,
				"error", err,
			)
		}
	}()
}

func customerFromEvent(event *domain.Event) (email, name string) {
	var md domain.EventMetadata
	switch data := event.Data.(type) {
	case domain.CheckoutCompleted:
		md = data.Metadata
	case domain.DepositSucceeded:
		md = data.Metadata
	case domain.PaymentFailed:
		md = data.Metadata
	case domain.ChargeRefunded:
		md = data.Metadata
	}
	name = md.CustomerName
	if name == "" {
		name = "customer"
	}
	return md.CustomerEmail, name
}
