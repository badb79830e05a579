package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/logging"
	"github.com/afroflavours/restaurant-api/internal/service"
)

type paymentsService interface {
	CreateBookingDeposit(ctx context.Context, req service.DepositRequest) (*service.PaymentIntentResult, error)
	CreateCateringDeposit(ctx context.Context, req service.DepositRequest) (*service.PaymentIntentResult, error)
	CreateOrderCheckout(ctx context.Context, order *domain.Order) (*service.CheckoutResult, error)
	GetPayment(ctx context.Context, intentID string) (*service.PaymentDetails, error)
	CreateRefund(ctx context.Context, intentID string, amountCents *int64) (*service.RefundResult, error)
}

type bookingReader interface {
	GetByRef(ctx context.Context, bookingRef string) (*domain.Booking, error)
}

type cateringReader interface {
	GetByRef(ctx context.Context, quoteRef string) (*domain.CateringRequest, error)
}

type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type PaymentHandler struct {
	payments paymentsService
	bookings bookingReader
	catering cateringReader
	orders   orderReader
}

func NewPaymentHandler(payments paymentsService, bookings bookingReader, catering cateringReader, orders orderReader) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		bookings: bookings,
		catering: catering,
		orders:   orders,
	}
}

type depositRequest struct {
	ReferenceID string `json:"reference_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (r depositRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ReferenceID == "" {
		errs = append(errs, FieldError{Field: "reference_id", Message: "required"})
	}
	if r.AmountCents <= 0 {
		errs = append(errs, FieldError{Field: "amount_cents", Message: "must be greater than 0"})
	}
	return errs
}

type intentDTO struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// CreateBookingDeposit opens a payment intent for a booking deposit. The
// booking must already exist; its contact details become the correlation
// metadata the webhook path joins on.
func (h *PaymentHandler) CreateBookingDeposit(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	booking, err := h.bookings.GetByRef(r.Context(), req.ReferenceID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	result, err := h.payments.CreateBookingDeposit(r.Context(), service.DepositRequest{
		ReferenceID:   booking.BookingRef,
		AmountCents:   req.AmountCents,
		CustomerEmail: booking.Email,
		CustomerName:  booking.Name,
	})
	if err != nil {
		log.Error("booking deposit intent creation failed", "booking_ref", booking.BookingRef, "error", err)
		RespondAppError(w, ErrGatewayFailure, nil)
		return
	}

	log.Info("booking deposit intent created", "booking_ref", booking.BookingRef, "intent_id", result.IntentID)
	RespondSuccess(w, http.StatusOK, intentDTO{IntentID: result.IntentID, ClientSecret: result.ClientSecret})
}

func (h *PaymentHandler) CreateCateringDeposit(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	request, err := h.catering.GetByRef(r.Context(), req.ReferenceID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	result, err := h.payments.CreateCateringDeposit(r.Context(), service.DepositRequest{
		ReferenceID:   request.QuoteRef,
		AmountCents:   req.AmountCents,
		CustomerEmail: request.Email,
		CustomerName:  request.Name,
	})
	if err != nil {
		log.Error("catering deposit intent creation failed", "quote_ref", request.QuoteRef, "error", err)
		RespondAppError(w, ErrGatewayFailure, nil)
		return
	}

	log.Info("catering deposit intent created", "quote_ref", request.QuoteRef, "intent_id", result.IntentID)
	RespondSuccess(w, http.StatusOK, intentDTO{IntentID: result.IntentID, ClientSecret: result.ClientSecret})
}

type checkoutRequest struct {
	OrderID string `json:"order_id"`
}

type checkoutDTO struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateOrderCheckout opens a hosted checkout session for an existing pending
// order.
func (h *PaymentHandler) CreateOrderCheckout(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.OrderID == "" {
		RespondValidationError(w, []FieldError{{Field: "order_id", Message: "required"}})
		return
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "order_id", Message: "must be a valid UUID"}})
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if order.Status != domain.OrderStatusPending {
		RespondAppError(w, ErrInvalidStatus, nil)
		return
	}

	result, err := h.payments.CreateOrderCheckout(r.Context(), order)
	if err != nil {
		log.Error("order checkout creation failed", "order_id", order.ID, "error", err)
		RespondAppError(w, ErrGatewayFailure, nil)
		return
	}

	log.Info("order checkout created", "order_id", order.ID, "session_id", result.SessionID)
	RespondSuccess(w, http.StatusOK, checkoutDTO{SessionID: result.SessionID, CheckoutURL: result.URL})
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	intentID := r.PathValue("intentID")
	if intentID == "" {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	details, err := h.payments.GetPayment(r.Context(), intentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrResourceNotFound, nil)
			return
		}
		RespondAppError(w, ErrGatewayFailure, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"intent_id":    details.IntentID,
		"amount_cents": details.AmountCents,
		"status":       details.Status,
		"metadata":     details.Metadata,
	})
}

type refundRequest struct {
	IntentID    string `json:"intent_id"`
	AmountCents *int64 `json:"amount_cents,omitempty"`
}

func (h *PaymentHandler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.IntentID == "" {
		RespondValidationError(w, []FieldError{{Field: "intent_id", Message: "required"}})
		return
	}
	if req.AmountCents != nil && *req.AmountCents <= 0 {
		RespondValidationError(w, []FieldError{{Field: "amount_cents", Message: "must be greater than 0"}})
		return
	}

	result, err := h.payments.CreateRefund(r.Context(), req.IntentID, req.AmountCents)
	if err != nil {
		log.Error("refund creation failed", "intent_id", req.IntentID, "error", err)
		RespondAppError(w, ErrGatewayFailure, nil)
		return
	}

	log.Info("refund created", "intent_id", req.IntentID, "refund_id", result.RefundID)
	RespondSuccess(w, http.StatusOK, map[string]string{
		"refund_id": result.RefundID,
		"status":    result.Status,
	})
}
