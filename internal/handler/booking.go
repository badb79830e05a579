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

type bookingService interface {
	Create(ctx context.Context, req service.CreateBookingRequest) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingRef string, status domain.BookingStatus) error
}

type BookingHandler struct {
	bookings bookingService
}

func NewBookingHandler(bookings bookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Guests          int     `json:"guests"`
	BookingType     string  `json:"booking_type"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

func (r createBookingRequest) Validate() []FieldError {
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
	if r.Date == "" {
		errs = append(errs, FieldError{Field: "date", Message: "required"})
	} else if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.Time == "" {
		errs = append(errs, FieldError{Field: "time", Message: "required"})
	}
	if r.Guests < 1 || r.Guests > 50 {
		errs = append(errs, FieldError{Field: "guests", Message: "must be between 1 and 50"})
	}
	if r.BookingType == "" {
		errs = append(errs, FieldError{Field: "booking_type", Message: "required"})
	} else if !domain.BookingType(r.BookingType).IsValid() {
		errs = append(errs, FieldError{Field: "booking_type", Message: "must be dine-in, event, or african-experience"})
	}

	return errs
}

type bookingDTO struct {
	ID              uuid.UUID `json:"id"`
	BookingRef      string    `json:"booking_ref"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Guests          int       `json:"guests"`
	BookingType     string    `json:"booking_type"`
	SpecialRequests *string   `json:"special_requests,omitempty"`
	Status          string    `json:"status"`
	AmountPaidCents *int64    `json:"amount_paid_cents,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toBookingDTO(b *domain.Booking) bookingDTO {
	return bookingDTO{
		ID:              b.ID,
		BookingRef:      b.BookingRef,
		Name:            b.Name,
		Email:           b.Email,
		Phone:           b.Phone,
		Date:            b.Date.Format("2006-01-02"),
		Time:            b.Time,
		Guests:          b.Guests,
		BookingType:     string(b.BookingType),
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		AmountPaidCents: b.AmountPaidCents,
		CreatedAt:       b.CreatedAt,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	booking, err := h.bookings.Create(r.Context(), service.CreateBookingRequest{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            date,
		Time:            req.Time,
		Guests:          req.Guests,
		BookingType:     domain.BookingType(req.BookingType),
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("booking created", "booking_ref", booking.BookingRef, "guests", booking.Guests)
	RespondSuccess(w, http.StatusCreated, toBookingDTO(booking))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]bookingDTO, 0, len(bookings))
	for i := range bookings {
		dtos = append(dtos, toBookingDTO(&bookings[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type updateBookingStatusRequest struct {
	BookingRef string `json:"booking_ref"`
	Status     string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	if req.BookingRef == "" {
		fields = append(fields, FieldError{Field: "booking_ref", Message: "required"})
	}
	if req.Status == "" {
		fields = append(fields, FieldError{Field: "status", Message: "required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	err := h.bookings.UpdateStatus(r.Context(), req.BookingRef, domain.BookingStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			RespondAppError(w, ErrInvalidStatus, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{
		"booking_ref": req.BookingRef,
		"status":      req.Status,
	})
}
