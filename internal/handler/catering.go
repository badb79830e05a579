package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/afroflavours/restaurant-api/internal/domain"
	"github.com/afroflavours/restaurant-api/internal/logging"
	"github.com/afroflavours/restaurant-api/internal/service"
)

type cateringService interface {
	Create(ctx context.Context, req service.CreateCateringRequest) (*domain.CateringRequest, error)
	List(ctx context.Context) ([]domain.CateringRequest, error)
	Quote(ctx context.Context, quoteRef string, amountCents int64) (*domain.CateringRequest, error)
	UpdateStatus(ctx context.Context, quoteRef string, status domain.CateringStatus) error
}

type CateringHandler struct {
	catering cateringService
}

func NewCateringHandler(catering cateringService) *CateringHandler {
	return &CateringHandler{catering: catering}
}

type createCateringRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	EventDate string  `json:"event_date"`
	Guests    int     `json:"guests"`
	EventType string  `json:"event_type"`
	Message   *string `json:"message,omitempty"`
}

func (r createCateringRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "required"})
	}
	if r.EventDate == "" {
		errs = append(errs, FieldError{Field: "event_date", Message: "required"})
	} else if _, err := time.Parse("2006-01-02", r.EventDate); err != nil {
		errs = append(errs, FieldError{Field: "event_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.Guests < 1 {
		errs = append(errs, FieldError{Field: "guests", Message: "must be at least 1"})
	}
	if r.EventType == "" {
		errs = append(errs, FieldError{Field: "event_type", Message: "required"})
	}

	return errs
}

type cateringDTO struct {
	ID                uuid.UUID `json:"id"`
	QuoteRef          string    `json:"quote_ref"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	EventDate         string    `json:"event_date"`
	Guests            int       `json:"guests"`
	EventType         string    `json:"event_type"`
	Message           *string   `json:"message,omitempty"`
	Status            string    `json:"status"`
	QuotedAmountCents *int64    `json:"quoted_amount_cents,omitempty"`
	DepositPaidCents  *int64    `json:"deposit_paid_cents,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toCateringDTO(c *domain.CateringRequest) cateringDTO {
	return cateringDTO{
		ID:                c.ID,
		QuoteRef:          c.QuoteRef,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		EventDate:         c.EventDate.Format("2006-01-02"),
		Guests:            c.Guests,
		EventType:         c.EventType,
		Message:           c.Message,
		Status:            string(c.Status),
		QuotedAmountCents: c.QuotedAmountCents,
		DepositPaidCents:  c.DepositPaidCents,
		CreatedAt:         c.CreatedAt,
	}
}

func (h *CateringHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createCateringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	eventDate, _ := time.Parse("2006-01-02", req.EventDate)
	request, err := h.catering.Create(r.Context(), service.CreateCateringRequest{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		EventDate: eventDate,
		Guests:    req.Guests,
		EventType: req.EventType,
		Message:   req.Message,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("catering request created", "quote_ref", request.QuoteRef, "guests", request.Guests)
	RespondSuccess(w, http.StatusCreated, toCateringDTO(request))
}

func (h *CateringHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.catering.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]cateringDTO, 0, len(requests))
	for i := range requests {
		dtos = append(dtos, toCateringDTO(&requests[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type quoteCateringRequest struct {
	QuoteRef    string `json:"quote_ref"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *CateringHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteCateringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if req.QuoteRef == "" {
		fields = append(fields, FieldError{Field: "quote_ref", Message: "required"})
	}
	if req.AmountCents <= 0 {
		fields = append(fields, FieldError{Field: "amount_cents", Message: "must be greater than 0"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	request, err := h.catering.Quote(r.Context(), req.QuoteRef, req.AmountCents)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCateringDTO(request))
}

type updateCateringStatusRequest struct {
	QuoteRef string `json:"quote_ref"`
	Status   string `json:"status"`
}

func (h *CateringHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateCateringStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if req.QuoteRef == "" {
		fields = append(fields, FieldError{Field: "quote_ref", Message: "required"})
	}
	if req.Status == "" {
		fields = append(fields, FieldError{Field: "status", Message: "required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	err := h.catering.UpdateStatus(r.Context(), req.QuoteRef, domain.CateringStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			RespondAppError(w, ErrInvalidStatus, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{
		"quote_ref": req.QuoteRef,
		"status":    req.Status,
	})
}
