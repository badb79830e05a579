package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/afroflavours/restaurant-api/internal/domain"
)

// Payments wraps the gateway client for outbound calls: deposit intents,
// order checkout sessions, refunds, and payment lookups. Correlation metadata
// attached here is what the webhook path later joins on.
type Payments struct {
	sc         *client.API
	currency   string
	successURL string
	cancelURL  string
}

func NewPayments(apiKey, currency, successURL, cancelURL string) *Payments {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Payments{
		sc:         sc,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

type DepositRequest struct {
	ReferenceID   string
	AmountCents   int64
	CustomerEmail string
	CustomerName  string
}

type PaymentIntentResult struct {
	IntentID     string
	ClientSecret string
}

func (p *Payments) CreateBookingDeposit(ctx context.Context, req DepositRequest) (*PaymentIntentResult, error) {
	return p.createDeposit(ctx, req, domain.ReferenceKindBooking, domain.DepositTypeBooking,
		fmt.Sprintf("Booking deposit for %s", req.ReferenceID))
}

func (p *Payments) CreateCateringDeposit(ctx context.Context, req DepositRequest) (*PaymentIntentResult, error) {
	return p.createDeposit(ctx, req, domain.ReferenceKindCatering, domain.DepositTypeCatering,
		fmt.Sprintf("Catering deposit for %s", req.ReferenceID))
}

func (p *Payments) createDeposit(ctx context.Context, req DepositRequest, kind domain.ReferenceKind, depositType, description string) (*PaymentIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(req.AmountCents),
		Currency:     stripe.String(p.currency),
		ReceiptEmail: stripe.String(req.CustomerEmail),
		Description:  stripe.String(description),
	}
	params.Context = ctx
	params.AddMetadata("reference_id", req.ReferenceID)
	params.AddMetadata("reference_kind", string(kind))
	params.AddMetadata("type", depositType)
	params.AddMetadata("customer_email", req.CustomerEmail)
	params.AddMetadata("customer_name", req.CustomerName)

	intent, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("createDeposit: %w", err)
	}
	return &PaymentIntentResult{IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

type CheckoutResult struct {
	SessionID string
	URL       string
}

// CreateOrderCheckout opens a hosted checkout session for the order's items.
func (p *Payments) CreateOrderCheckout(ctx context.Context, order *domain.Order) (*CheckoutResult, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.currency),
				UnitAmount: stripe.Int64(item.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(p.successURL),
		CancelURL:     stripe.String(p.cancelURL),
		CustomerEmail: stripe.String(order.CustomerEmail),
		LineItems:     lineItems,
	}
	params.Context = ctx
	params.AddMetadata("reference_id", order.ID.String())
	params.AddMetadata("reference_kind", string(domain.ReferenceKindOrder))
	params.AddMetadata("customer_email", order.CustomerEmail)
	params.AddMetadata("customer_name", order.CustomerName)

	session, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("CreateOrderCheckout: %w", err)
	}
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

type PaymentDetails struct {
	IntentID    string
	AmountCents int64
	Status      string
	Metadata    map[string]string
}

func (p *Payments) GetPayment(ctx context.Context, intentID string) (*PaymentDetails, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.sc.PaymentIntents.Get(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, fmt.Errorf("GetPayment: %s: %w", intentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	return &PaymentDetails{
		IntentID:    intent.ID,
		AmountCents: intent.Amount,
		Status:      string(intent.Status),
		Metadata:    intent.Metadata,
	}, nil
}

type RefundResult struct {
	RefundID string
	Status   string
}

func (p *Payments) CreateRefund(ctx context.Context, intentID string, amountCents *int64) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	if amountCents != nil {
		params.Amount = stripe.Int64(*amountCents)
	}
	params.Context = ctx

	refund, err := p.sc.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("CreateRefund: %w", err)
	}
	return &RefundResult{RefundID: refund.ID, Status: string(refund.Status)}, nil
}
